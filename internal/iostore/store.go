// Package iostore publishes the output directory to S3-compatible
// object storage.
package iostore

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/pipeline"
)

// putter is the part of the S3 client used for uploads.
type putter interface {
	PutObject(
		ctx context.Context,
		in *s3.PutObjectInput,
		opts ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

type publisher struct {
	client putter
	bucket string
	prefix string
}

// New creates a Publisher from S3 settings. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain.
// A custom endpoint switches to path-style addressing.
func New(ctx context.Context, cfg config.S3Config) (pipeline.Publisher, error) {
	if cfg.Bucket == "" {
		return nil, NoBucketError()
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, ConfigError(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &publisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Publish uploads every regular file of dir. Subdirectories are skipped.
func (p *publisher) Publish(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return UploadError(dir, p.bucket, err)
	}

	var count int
	var size int64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		n, err := p.upload(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		count++
		size += n
	}

	slog.Info("Published artifacts",
		"bucket", p.bucket,
		"prefix", p.prefix,
		"files", count,
		"size", humanize.Bytes(uint64(size)),
	)
	return nil
}

func (p *publisher) upload(ctx context.Context, file string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, UploadError(file, p.bucket, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, UploadError(file, p.bucket, err)
	}

	key := p.Key(filepath.Base(file))
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(file)),
	})
	if err != nil {
		return 0, UploadError(file, p.bucket, err)
	}
	slog.Debug("Uploaded artifact", "key", key)
	return info.Size(), nil
}

// Key returns the object key of a file name.
func (p *publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	case ".jsonl":
		return "application/x-ndjson"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".tsv":
		return "text/tab-separated-values; charset=utf-8"
	case ".prom":
		return "text/plain; version=0.0.4"
	case ".sqlite":
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}
