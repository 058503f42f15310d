package secrets

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"

	"github.com/oracle/oci-go-sdk/v65/common"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// LocalResolver reads the bundle from an OCI config profile on disk. It is
// the development fallback; production deployments resolve from the vault.
type LocalResolver struct {
	profile       string
	path          string
	defaultRegion string
	logger        *slog.Logger
}

// NewLocalResolver creates a resolver over ~/.oci/config or an explicit
// path.
func NewLocalResolver(opts Options, logger *slog.Logger) *LocalResolver {
	return &LocalResolver{
		profile:       opts.Profile,
		path:          opts.ConfigPath,
		defaultRegion: opts.DefaultRegion,
		logger:        logger.With("component", "local_resolver"),
	}
}

// Resolve implements domain.CredentialResolver.
func (r *LocalResolver) Resolve(ctx context.Context) (domain.Credentials, error) {
	r.logger.Warn("resolving credentials from local profile, not for production use", "profile", r.profile)

	provider := common.CustomProfileConfigProvider(r.path, r.profile)

	tenancy, err := provider.TenancyOCID()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: tenancy from profile %q: %w", domain.ErrSecretUnavailable, r.profile, err)
	}
	user, err := provider.UserOCID()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: user from profile %q: %w", domain.ErrSecretUnavailable, r.profile, err)
	}
	fingerprint, err := provider.KeyFingerprint()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: fingerprint from profile %q: %w", domain.ErrSecretUnavailable, r.profile, err)
	}
	key, err := provider.PrivateRSAKey()
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: private key from profile %q: %w", domain.ErrSecretDecode, r.profile, err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	region, err := provider.Region()
	if err != nil || region == "" {
		region = r.defaultRegion
	}

	creds := domain.Credentials{
		UserOCID:      user,
		TenancyOCID:   tenancy,
		Fingerprint:   fingerprint,
		PrivateKeyPEM: string(keyPEM),
		Region:        region,
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, err
	}
	return creds, nil
}
