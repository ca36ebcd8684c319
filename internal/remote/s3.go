// Package remote stages benchmark inputs and settings kept in AWS.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used for staging.
type S3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
// An empty region keeps the region from the environment or shared config.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// IsS3URL reports whether loc is an s3://bucket/prefix URL.
func IsS3URL(loc string) bool {
	return strings.HasPrefix(loc, s3Scheme)
}

// ParseS3URL splits s3://bucket/prefix into bucket and key prefix. A
// non-empty prefix always ends with "/".
func ParseS3URL(u string) (bucket, prefix string, err error) {
	if !IsS3URL(u) {
		return "", "", fmt.Errorf("not an s3 url: %q", u)
	}
	rest := strings.TrimPrefix(u, s3Scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 url %q has no bucket", u)
	}
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// Stager copies every object under an S3 prefix into a local directory so a
// batch can glob it like any other data directory.
type Stager struct {
	client      S3API
	concurrency int
	log         logrus.FieldLogger
}

// NewStager creates a Stager that runs at most concurrency downloads at once.
func NewStager(client S3API, concurrency int, log logrus.FieldLogger) *Stager {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Stager{client: client, concurrency: concurrency, log: log.WithField("component", "s3")}
}

// Stage downloads the objects under url into dest, keeping the key layout
// below the prefix, and returns the number of files written.
func (s *Stager) Stage(ctx context.Context, url, dest string) (int, error) {
	bucket, prefix, err := ParseS3URL(url)
	if err != nil {
		return 0, err
	}

	keys, err := s.list(ctx, bucket, prefix)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, key := range keys {
		target := LocalPath(dest, prefix, key)
		g.Go(func() error {
			return s.download(gctx, bucket, key, target)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"bucket": bucket, "prefix": prefix, "objects": len(keys)}).Info("staged s3 inputs")
	return len(keys), nil
}

func (s *Stager) list(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Folder placeholder objects.
			if strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Stager) download(ctx context.Context, bucket, key, target string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	s.log.WithField("key", key).Debug("downloaded object")
	return nil
}

// LocalPath maps an object key below prefix to a path under dest. Keys are
// cleaned so that ".." segments cannot escape dest.
func LocalPath(dest, prefix, key string) string {
	rel := path.Clean("/" + strings.TrimPrefix(key, prefix))
	return filepath.Join(dest, filepath.FromSlash(rel))
}
