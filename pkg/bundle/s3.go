package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// GetObjectAPI is the subset of the S3 client used by S3Source.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// maxManifestSize bounds how much of an object is read as a manifest.
const maxManifestSize = 1 << 20

// S3Source reads "<prefix><id>.json" manifests from an S3 bucket.
//
// Example usage:
//
//	client := bundle.NewS3Client("eu-west-1", "")
//	source := bundle.NewS3Source(client, "my-bucket", "bundles/")
//	loader := bundle.NewLoader(source)
type S3Source struct {
	client GetObjectAPI
	bucket string
	prefix string
}

// NewS3Source creates an S3 manifest source.
func NewS3Source(client GetObjectAPI, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key holding loaderID's manifest.
func (s *S3Source) Key(loaderID string) string {
	return s.prefix + loaderID + ".json"
}

// Fetch implements Source.
func (s *S3Source) Fetch(ctx context.Context, loaderID string) (*Bundle, error) {
	key := s.Key(loaderID)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", key, err)
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("s3 manifest %s exceeds %d bytes", key, maxManifestSize)
	}
	return DecodeManifest(loaderID, data)
}

// NewS3Client builds an S3 client for region. A non-empty endpoint selects an
// S3-compatible service with path-style addressing. Credentials come from
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY; without them requests are
// anonymous.
func NewS3Client(region, endpoint string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: envCredentials(),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	token := os.Getenv("AWS_SESSION_TOKEN")
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "environment",
		}, nil
	})
}
