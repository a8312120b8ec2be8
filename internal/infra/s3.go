package infra

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/clipstream/clipstream/internal/config"
)

// NewS3Client configures an S3 client for the media bucket. Custom
// endpoints (MinIO and friends) use path-style addressing.
func NewS3Client(ctx context.Context, media config.Media) (*s3.Client, error) {
	if !media.Enabled() {
		return nil, fmt.Errorf("media bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(media.Region),
	}
	if media.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(media.AccessKey, media.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if media.Endpoint != "" {
			o.BaseEndpoint = &media.Endpoint
			o.UsePathStyle = true
		}
	})
	return client, nil
}
