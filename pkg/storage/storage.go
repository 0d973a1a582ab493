package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ImageStorage defines contract for image storage providers.
type ImageStorage interface {
	// UploadImage uploads image from reader and returns its public URL.
	// folder is optional logical folder in storage (e.g. "questions").
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage deletes image from storage using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

var ErrStorageDisabled = errors.New("image storage is not configured")

const (
	DriverCloudinary = "cloudinary"
	DriverMinio      = "minio"
	DriverNone       = "none"
)

type Options struct {
	Driver string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// New builds the storage selected by opts.Driver. DriverNone (or "") yields a
// storage whose calls fail with ErrStorageDisabled.
func New(ctx context.Context, opts Options) (ImageStorage, error) {
	switch opts.Driver {
	case DriverCloudinary:
		return NewCloudinaryStorage(opts.CloudinaryCloudName, opts.CloudinaryAPIKey, opts.CloudinaryAPISecret)
	case DriverMinio:
		return NewMinioStorage(ctx, opts.MinioEndpoint, opts.MinioAccessKey, opts.MinioSecretKey, opts.MinioBucket, opts.MinioUseSSL)
	case DriverNone, "":
		return disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

type disabled struct{}

func (disabled) UploadImage(context.Context, io.Reader, string, string) (string, error) {
	return "", ErrStorageDisabled
}

func (disabled) DeleteImage(context.Context, string) error {
	return ErrStorageDisabled
}
