package services

import (
	"context"
	"errors"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSService is the Google Cloud Storage ObjectStore.
type GCSService struct {
	client *storage.Client
}

// NewGCSService builds a client from GOOGLE_APPLICATION_CREDENTIALS(_JSON),
// or an unauthenticated emulator client when emulatorHost is set.
func NewGCSService(ctx context.Context, emulatorHost string) (*GCSService, error) {
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(emulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(gcsOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSService{client: client}, nil
}

func gcsOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *GCSService) DeleteBlob(ctx context.Context, container, key string) error {
	err := s.client.Bucket(container).Object(key).Delete(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrBlobNotFound
	}
	return &StoreError{Op: "delete blob", Err: err}
}

func (s *GCSService) Close() error {
	return s.client.Close()
}
