package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var fingerprintPattern = regexp.MustCompile(`^([a-fA-F0-9]{2}:){15}[a-fA-F0-9]{2}$`)

// Credentials is the bundle of OCI API key material the collector
// authenticates with. Bundles exist only in memory: they are never persisted
// and never logged.
type Credentials struct {
	UserOCID      string
	TenancyOCID   string
	Fingerprint   string
	PrivateKeyPEM string
	Region        string
}

// Validate rejects the malformed bundles seen in practice: wrong OCID kinds,
// truncated fingerprints, non-PEM key material.
func (c Credentials) Validate() error {
	if !strings.HasPrefix(c.UserOCID, "ocid1.user.") {
		return errors.New("credentials: invalid user OCID format")
	}
	if !strings.HasPrefix(c.TenancyOCID, "ocid1.tenancy.") {
		return errors.New("credentials: invalid tenancy OCID format")
	}
	if !fingerprintPattern.MatchString(c.Fingerprint) {
		return errors.New("credentials: invalid fingerprint format")
	}
	if !strings.HasPrefix(c.PrivateKeyPEM, "-----BEGIN") || !strings.Contains(c.PrivateKeyPEM, "PRIVATE KEY-----") {
		return errors.New("credentials: private key is not PEM encoded")
	}
	return nil
}

// String redacts the bundle so accidental %v formatting leaks nothing.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{region: %s, redacted}", c.Region)
}

// LogValue keeps slog output as terse as String.
func (c Credentials) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
