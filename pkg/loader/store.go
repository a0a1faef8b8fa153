package loader

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/studio/internal/errors"
)

// maxFileSize caps how much of a package file is read.
const maxFileSize = 4 << 20

// PackageStore reads files of the original application package.
type PackageStore interface {
	// Location describes the store in logs.
	Location() string

	// ReadFile returns the content of name, a slash-separated path
	// relative to the package root.
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// cleanName rejects absolute paths and parent references.
func cleanName(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", errors.New("E212").WithDetail("empty file name")
	}
	return clean, nil
}

// DirStore reads the package from a directory.
type DirStore struct {
	Root string
}

// NewDirStore creates a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Root: dir}
}

// Location implements PackageStore.
func (d *DirStore) Location() string { return d.Root }

// ReadFile implements PackageStore.
func (d *DirStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(d.Root, filepath.FromSlash(clean))
	f, err := os.Open(full)
	if err != nil {
		return nil, errors.New("E212").Wrap(err).WithSource(full)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize))
	if err != nil {
		return nil, errors.New("E212").Wrap(err).WithSource(full)
	}
	return data, nil
}

// WriteFile replaces name with data, creating parent directories.
func (d *DirStore) WriteFile(ctx context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return errors.New("E215").WithDetail("invalid file name").WithSource(name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(d.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.New("E215").Wrap(err).WithSource(full)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.New("E215").Wrap(err).WithSource(full)
	}
	return nil
}

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads the package from objects under a bucket prefix.
//
// Example usage:
//
//	store, err := loader.NewS3StoreFromRegion(ctx, "my-bucket", "apps/booking/", "eu-west-1")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store over an existing client.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromRegion loads the default AWS configuration and creates a
// store. An empty region uses the configured default.
func NewS3StoreFromRegion(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E262").Wrap(err).WithSource("s3://" + bucket)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Location implements PackageStore.
func (s *S3Store) Location() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// ReadFile implements PackageStore.
func (s *S3Store) ReadFile(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	key := s.prefix + clean

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E212").Wrap(err).WithSource("s3://" + s.bucket + "/" + key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxFileSize))
	if err != nil {
		return nil, errors.New("E212").Wrap(err).WithSource("s3://" + s.bucket + "/" + key)
	}
	return data, nil
}
