package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Scheme prefixes S3 references: s3://<bucket>/<key>.
const S3Scheme = "s3"

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source streams objects from S3.
type S3Source struct {
	client S3API
}

// NewS3Source wraps an existing client.
func NewS3Source(client S3API) *S3Source {
	return &S3Source{client: client}
}

// NewS3SourceFromEnv loads the default AWS credential chain for region.
func NewS3SourceFromEnv(ctx context.Context, region string) (*S3Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(cfg)), nil
}

// Open implements ImageSource.
func (s *S3Source) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, key, err := splitBucketKey(ref, S3Scheme)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return out.Body, nil
}
