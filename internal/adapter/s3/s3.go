package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/niksmo/storefront/internal/core/port"
)

const pageContentType = "text/html; charset=utf-8"

var _ port.PagePublisher = (*Publisher)(nil)

var ErrNoBucket = errors.New("bucket is not configured")

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type objectPutter interface {
	PutObjectWithContext(
		ctx aws.Context, input *awss3.PutObjectInput, opts ...request.Option,
	) (*awss3.PutObjectOutput, error)
}

// A Publisher uploads rendered pages to an S3 bucket.
type Publisher struct {
	svc    objectPutter
	bucket string
}

func NewPublisher(cfg Config) (Publisher, error) {
	const op = "s3.NewPublisher"

	if cfg.Bucket == "" {
		return Publisher{}, fmt.Errorf("%s: %w", op, ErrNoBucket)
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return Publisher{}, fmt.Errorf("%s: %w", op, err)
	}

	return Publisher{svc: awss3.New(sess), bucket: cfg.Bucket}, nil
}

func (p Publisher) PublishPage(
	ctx context.Context, key string, body []byte,
) error {
	const op = "Publisher.PublishPage"
	log := slog.With("op", op)

	_, err := p.svc.PutObjectWithContext(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(pageContentType),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("page published", "bucket", p.bucket, "key", key, "bytes", len(body))
	return nil
}
