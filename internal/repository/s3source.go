package repository

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/pkg/log"
	"github.com/autopeer-io/ft/pkg/options"
)

// PresignExpiry bounds how long a payload URL handed to an installer
// stays valid.
const PresignExpiry = time.Hour

// S3Source reads manifests from an S3 compatible bucket.
type S3Source struct {
	client      *minio.Client
	bucketName  string
	prefix      string
	concurrency int
}

var _ Source = (*S3Source)(nil)

// NewS3Source creates a source on the bucket described by opts.
func NewS3Source(opts *options.S3Options) (*S3Source, error) {
	minioOpts := &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	}
	if opts.InsecureSkipVerify {
		minioOpts.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := minio.New(opts.Endpoint, minioOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &S3Source{
		client:      client,
		bucketName:  opts.BucketName,
		prefix:      strings.TrimPrefix(opts.Prefix, "/"),
		concurrency: max(opts.Concurrency, 1),
	}, nil
}

func (s *S3Source) Manifests(ctx context.Context) ([]Manifest, error) {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, core.NewConfigError("s3://"+s.bucketName, "bucket does not exist")
	}

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucketName, obj.Err)
		}
		if path.Base(obj.Key) == ManifestName {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)

	out := make([]Manifest, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			data, err := s.get(ctx, key)
			if err != nil {
				return err
			}
			out[i] = Manifest{Path: s.url(key), Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("Fetched package manifests", "bucket", s.bucketName, "count", len(out))
	return out, nil
}

func (s *S3Source) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Locate returns a presigned URL of the payload.
func (s *S3Source) Locate(ctx context.Context, pkg *core.Package) (string, error) {
	if pkg.Payload == "" {
		return "", fmt.Errorf("package %s names no payload", pkg)
	}

	key := path.Join(path.Dir(s.key(pkg.Path)), pkg.Payload)
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, PresignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return u.String(), nil
}

func (s *S3Source) url(key string) string {
	return "s3://" + s.bucketName + "/" + key
}

func (s *S3Source) key(u string) string {
	return strings.TrimPrefix(u, "s3://"+s.bucketName+"/")
}
