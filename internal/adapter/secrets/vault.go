package secrets

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/keymanagement"
	ocisecrets "github.com/oracle/oci-go-sdk/v65/secrets"
	ocivault "github.com/oracle/oci-go-sdk/v65/vault"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// Narrow views over the OCI clients so tests can substitute fakes. The real
// SDK clients satisfy these directly.
type vaultLister interface {
	ListVaults(ctx context.Context, request keymanagement.ListVaultsRequest) (keymanagement.ListVaultsResponse, error)
}

type secretLister interface {
	ListSecrets(ctx context.Context, request ocivault.ListSecretsRequest) (ocivault.ListSecretsResponse, error)
}

type bundleFetcher interface {
	GetSecretBundle(ctx context.Context, request ocisecrets.GetSecretBundleRequest) (ocisecrets.GetSecretBundleResponse, error)
}

// VaultResolver resolves the credential bundle from OCI Vault secrets. The
// vault is located by display name once and its OCID kept for the rest of
// the process; secret values are never cached and never logged.
type VaultResolver struct {
	vaults        vaultLister
	secretsList   secretLister
	bundles       bundleFetcher
	vaultName     string
	compartmentID string
	names         SecretNames
	defaultRegion string
	logger        *slog.Logger

	vaultID string
}

// NewVaultResolver builds the vault-backed resolver, authenticating with an
// instance principal or a local profile depending on opts.
func NewVaultResolver(opts Options, logger *slog.Logger) (*VaultResolver, error) {
	provider, err := baseProvider(opts)
	if err != nil {
		return nil, err
	}
	kmsClient, err := keymanagement.NewKmsVaultClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("build kms vault client: %w", err)
	}
	vaultsClient, err := ocivault.NewVaultsClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("build vaults client: %w", err)
	}
	secretsClient, err := ocisecrets.NewSecretsClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("build secrets client: %w", err)
	}
	if opts.VaultRegion != "" {
		kmsClient.SetRegion(opts.VaultRegion)
		vaultsClient.SetRegion(opts.VaultRegion)
		secretsClient.SetRegion(opts.VaultRegion)
	}

	return &VaultResolver{
		vaults:        kmsClient,
		secretsList:   vaultsClient,
		bundles:       secretsClient,
		vaultName:     opts.VaultName,
		compartmentID: opts.VaultCompartmentID,
		names:         DefaultSecretNames(),
		defaultRegion: opts.DefaultRegion,
		logger:        logger.With("component", "vault_resolver"),
	}, nil
}

// Resolve implements domain.CredentialResolver.
func (r *VaultResolver) Resolve(ctx context.Context) (domain.Credentials, error) {
	r.logger.Info("resolving credentials from vault", "vault", r.vaultName)

	user, err := r.secretValue(ctx, r.names.UserOCID)
	if err != nil {
		return domain.Credentials{}, err
	}
	tenancy, err := r.secretValue(ctx, r.names.TenancyOCID)
	if err != nil {
		return domain.Credentials{}, err
	}
	fingerprint, err := r.secretValue(ctx, r.names.Fingerprint)
	if err != nil {
		return domain.Credentials{}, err
	}
	privateKey, err := r.secretValue(ctx, r.names.PrivateKey)
	if err != nil {
		return domain.Credentials{}, err
	}
	region := r.optionalSecretValue(ctx, r.names.Region, r.defaultRegion)

	creds := domain.Credentials{
		UserOCID:      user,
		TenancyOCID:   tenancy,
		Fingerprint:   fingerprint,
		PrivateKeyPEM: privateKey,
		Region:        region,
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, err
	}

	r.logger.Info("credential bundle resolved and validated")
	return creds, nil
}

// secretValue fetches one secret by name and decodes its current version.
func (r *VaultResolver) secretValue(ctx context.Context, name string) (string, error) {
	vaultID, err := r.lookupVaultID(ctx)
	if err != nil {
		return "", err
	}

	list, err := r.secretsList.ListSecrets(ctx, ocivault.ListSecretsRequest{
		CompartmentId: common.String(r.compartmentID),
		VaultId:       common.String(vaultID),
		Name:          common.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("%w: list secrets for %q: %w", domain.ErrSecretUnavailable, name, err)
	}
	if len(list.Items) == 0 {
		return "", fmt.Errorf("%w: %q not found in vault %q", domain.ErrSecretUnavailable, name, r.vaultName)
	}
	summary := list.Items[0]
	if summary.LifecycleState != ocivault.SecretSummaryLifecycleStateActive {
		return "", fmt.Errorf("%w: %q is %s", domain.ErrSecretInactive, name, summary.LifecycleState)
	}

	bundle, err := r.bundles.GetSecretBundle(ctx, ocisecrets.GetSecretBundleRequest{SecretId: summary.Id})
	if err != nil {
		return "", fmt.Errorf("%w: fetch bundle for %q: %w", domain.ErrSecretUnavailable, name, err)
	}
	content, ok := bundle.SecretBundle.SecretBundleContent.(ocisecrets.Base64SecretBundleContentDetails)
	if !ok || content.Content == nil {
		return "", fmt.Errorf("%w: %q has no base64 content", domain.ErrSecretDecode, name)
	}
	decoded, err := base64.StdEncoding.DecodeString(*content.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", domain.ErrSecretDecode, name, err)
	}

	// Audit by name only; values never reach the log.
	r.logger.Info("retrieved secret", "name", name)
	return strings.TrimSpace(string(decoded)), nil
}

// optionalSecretValue falls back to a default instead of failing.
func (r *VaultResolver) optionalSecretValue(ctx context.Context, name, fallback string) string {
	value, err := r.secretValue(ctx, name)
	if err != nil {
		r.logger.Info("optional secret not set, using default", "name", name, "default", fallback)
		return fallback
	}
	return value
}

// lookupVaultID finds the ACTIVE vault matching the configured display name.
// The OCID is location metadata, not a secret, so keeping it for the process
// lifetime is fine and saves a listing per secret.
func (r *VaultResolver) lookupVaultID(ctx context.Context) (string, error) {
	if r.vaultID != "" {
		return r.vaultID, nil
	}

	resp, err := r.vaults.ListVaults(ctx, keymanagement.ListVaultsRequest{
		CompartmentId: common.String(r.compartmentID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: list vaults: %w", domain.ErrSecretUnavailable, err)
	}
	for _, v := range resp.Items {
		if v.DisplayName != nil && *v.DisplayName == r.vaultName && v.LifecycleState == keymanagement.VaultSummaryLifecycleStateActive {
			r.vaultID = *v.Id
			r.logger.Debug("located vault", "vault", r.vaultName)
			return r.vaultID, nil
		}
	}
	return "", fmt.Errorf("%w: vault %q not found or not active", domain.ErrSecretUnavailable, r.vaultName)
}
