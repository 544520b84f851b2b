// Package s3 publishes the closing provisioning report to an S3 bucket.
//
// Uploading the report is strictly optional: instances are frequently
// provisioned without any object-storage wiring, and a missing bucket must
// never change the run outcome. Callers treat every error from this package
// as a warning.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// api is the slice of the S3 SDK the publisher uses.
type api interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Publisher uploads status reports to a bucket.
type Publisher struct {
	s3     api
	bucket string
}

// LatestKey is the stable object key overwritten on every run, so callers
// can poll one known location for the most recent outcome.
const LatestKey = "stackd/status-latest.txt"

// NewPublisher builds a publisher for the given bucket. Empty accessKey
// falls back to the SDK's default credential chain (instance profile, env).
func NewPublisher(region, accessKey, secretKey, bucket string) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Publisher{s3: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Publish uploads the report under a timestamped key and refreshes the
// latest pointer.
func (p *Publisher) Publish(ctx context.Context, now time.Time, report []byte) error {
	key := TimestampedKey(now)
	if err := p.put(ctx, key, report); err != nil {
		return err
	}
	return p.put(ctx, LatestKey, report)
}

// FetchLatest downloads the most recent published report.
func (p *Publisher) FetchLatest(ctx context.Context) ([]byte, error) {
	result, err := p.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(LatestKey),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("no status report published to bucket %s yet", p.bucket)
		}
		return nil, fmt.Errorf("failed to fetch status report from bucket %s: %w", p.bucket, err)
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read status report body: %w", err)
	}
	return buf.Bytes(), nil
}

// TimestampedKey names one run's report by its completion time.
func TimestampedKey(now time.Time) string {
	return fmt.Sprintf("stackd/status-%s.txt", now.UTC().Format("20060102-150405"))
}

func (p *Publisher) put(ctx context.Context, key string, data []byte) error {
	_, err := p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, p.bucket, err)
	}
	return nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	// that may not return the exact SDK error types.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}

	return false
}
