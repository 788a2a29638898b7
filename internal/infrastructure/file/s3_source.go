package file

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source streams import files from S3 objects addressed as s3://bucket/key.
type S3Source struct {
	client getObjectAPI
}

// S3Options configures NewS3Source. Empty credentials fall back to the
// default AWS credential chain.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Source builds an S3 client. A non-empty endpoint switches to
// path-style addressing for S3-compatible stores such as MinIO.
func NewS3Source(ctx context.Context, o S3Options) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID, o.SecretAccessKey, "",
		)))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return &S3Source{client: client}, nil
}

func newS3SourceWithClient(client getObjectAPI) *S3Source {
	return &S3Source{client: client}
}

func (s *S3Source) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(sourcePath)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", sourcePath, err)
	}
	return out.Body, nil
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidS3URI, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: missing object key in %s", ErrInvalidS3URI, raw)
	}
	return u.Host, key, nil
}
