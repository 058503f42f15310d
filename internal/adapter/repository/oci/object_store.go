package oci

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// StorageAPI is the slice of the OCI object storage client the store needs.
// The real objectstorage.ObjectStorageClient satisfies it; tests substitute
// fakes.
type StorageAPI interface {
	GetObject(ctx context.Context, request objectstorage.GetObjectRequest) (objectstorage.GetObjectResponse, error)
	PutObject(ctx context.Context, request objectstorage.PutObjectRequest) (objectstorage.PutObjectResponse, error)
	ListObjects(ctx context.Context, request objectstorage.ListObjectsRequest) (objectstorage.ListObjectsResponse, error)
}

// ObjectStore implements domain.ObjectStore on OCI Object Storage. Puts are
// full-object replaces, last writer wins; retries are left to the caller.
type ObjectStore struct {
	client    StorageAPI
	namespace string
	bucket    string
	logger    *slog.Logger
}

// New wraps an already-built storage client.
func New(client StorageAPI, namespace, bucket string, logger *slog.Logger) *ObjectStore {
	return &ObjectStore{
		client:    client,
		namespace: namespace,
		bucket:    bucket,
		logger:    logger.With("component", "object_store", "bucket", bucket),
	}
}

// NewFromCredentials builds the OCI client from a resolved bundle. A
// non-empty region overrides the bundle's region so event data stays in the
// residency region even when the vault lives elsewhere.
func NewFromCredentials(creds domain.Credentials, namespace, bucket, region string, logger *slog.Logger) (*ObjectStore, error) {
	effectiveRegion := creds.Region
	if region != "" {
		effectiveRegion = region
	}
	provider := common.NewRawConfigurationProvider(
		creds.TenancyOCID,
		creds.UserOCID,
		effectiveRegion,
		creds.Fingerprint,
		creds.PrivateKeyPEM,
		nil,
	)
	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("build object storage client: %w", err)
	}
	return New(client, namespace, bucket, logger), nil
}

// Get implements domain.ObjectStore.
func (s *ObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(s.bucket),
		ObjectName:    common.String(name),
	})
	if err != nil {
		return nil, s.mapError("get", name, err)
	}
	defer resp.Content.Close()

	data, err := io.ReadAll(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorageUnavailable, name, err)
	}
	return data, nil
}

// Put implements domain.ObjectStore.
func (s *ObjectStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, objectstorage.PutObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(s.bucket),
		ObjectName:    common.String(name),
		ContentLength: common.Int64(int64(len(data))),
		PutObjectBody: io.NopCloser(bytes.NewReader(data)),
	})
	if err != nil {
		return s.mapError("put", name, err)
	}
	s.logger.Debug("object written", "object", name, "bytes", len(data))
	return nil
}

// List implements domain.ObjectStore, following pagination to the end of the
// prefix.
func (s *ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	var start *string
	for {
		resp, err := s.client.ListObjects(ctx, objectstorage.ListObjectsRequest{
			NamespaceName: common.String(s.namespace),
			BucketName:    common.String(s.bucket),
			Prefix:        common.String(prefix),
			Start:         start,
		})
		if err != nil {
			return nil, s.mapError("list", prefix, err)
		}
		for _, obj := range resp.ListObjects.Objects {
			if obj.Name != nil {
				names = append(names, *obj.Name)
			}
		}
		if resp.ListObjects.NextStartWith == nil || *resp.ListObjects.NextStartWith == "" {
			return names, nil
		}
		start = resp.ListObjects.NextStartWith
	}
}

func (s *ObjectStore) mapError(op, name string, err error) error {
	var svcErr common.ServiceError
	if errors.As(err, &svcErr) && svcErr.GetHTTPStatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrObjectNotFound, op, name, err)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageUnavailable, op, name, err)
}
