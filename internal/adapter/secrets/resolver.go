package secrets

import (
	"fmt"
	"log/slog"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// Options configures credential resolution.
type Options struct {
	// UseVault selects the vault-backed resolver; when false the local
	// config-file resolver is used instead.
	UseVault bool

	// UseInstancePrincipal authenticates vault access with the instance's
	// own identity instead of a config file.
	UseInstancePrincipal bool

	// Profile is the OCI config profile for file-based auth.
	Profile string

	// ConfigPath overrides the default ~/.oci/config location.
	ConfigPath string

	// VaultName, VaultRegion and VaultCompartmentID locate the vault.
	VaultName          string
	VaultRegion        string
	VaultCompartmentID string

	// DefaultRegion is used when the optional region secret is absent.
	DefaultRegion string
}

// SecretNames maps the bundle fields to their names in the vault.
type SecretNames struct {
	UserOCID    string
	TenancyOCID string
	Fingerprint string
	PrivateKey  string
	Region      string
}

// DefaultSecretNames are the names the deployment provisions in the vault.
func DefaultSecretNames() SecretNames {
	return SecretNames{
		UserOCID:    "oci-user-ocid",
		TenancyOCID: "oci-tenancy-ocid",
		Fingerprint: "oci-fingerprint",
		PrivateKey:  "oci-private-key",
		Region:      "oci-region",
	}
}

// NewResolver returns the resolver selected by opts: vault-backed by
// default, the local config-file resolver only when vault mode is explicitly
// off.
func NewResolver(opts Options, logger *slog.Logger) (domain.CredentialResolver, error) {
	if opts.UseVault {
		return NewVaultResolver(opts, logger)
	}
	return NewLocalResolver(opts, logger), nil
}

// baseProvider is the identity used to reach the vault service, distinct
// from the bundle being resolved.
func baseProvider(opts Options) (common.ConfigurationProvider, error) {
	if opts.UseInstancePrincipal {
		provider, err := auth.InstancePrincipalConfigurationProvider()
		if err != nil {
			return nil, fmt.Errorf("instance principal auth: %w", err)
		}
		return provider, nil
	}
	return common.CustomProfileConfigProvider(opts.ConfigPath, opts.Profile), nil
}
