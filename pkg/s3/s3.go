package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"picboard/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Client stores objects in an S3 compatible backend and issues their public URLs.
type Client struct {
	s3Client  s3iface.S3API
	endpoint  string
	region    string
	useSSL    bool
	publicURL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	useSSL := cfg.S3UseSSL != "false"
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!useSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewFromAPI(s3.New(sess), cfg.AWSEndpoint, cfg.AWSRegion, useSSL, cfg.S3PublicURL), nil
}

// NewFromAPI wraps an existing S3 API implementation.
func NewFromAPI(api s3iface.S3API, endpoint, region string, useSSL bool, publicURL string) *Client {
	return &Client{
		s3Client:  api,
		endpoint:  endpoint,
		region:    region,
		useSSL:    useSSL,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// EnsureBucket creates the bucket when it does not exist yet (MinIO).
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := c.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	_, err = c.s3Client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) {
			switch aerr.Code() {
			case s3.ErrCodeBucketAlreadyOwnedByYou, s3.ErrCodeBucketAlreadyExists:
				return nil
			}
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// Store uploads body under key in bucket.
func (c *Client) Store(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string) error {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// PublicURL is deterministic: it only depends on configuration, bucket and key.
func (c *Client) PublicURL(bucket, key string) string {
	escapedKey := url.PathEscape(key)

	if c.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", c.publicURL, bucket, escapedKey)
	}

	// Generate URL based on endpoint (MinIO or AWS S3)
	endpoint := c.endpoint
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "http"
		if c.useSSL {
			protocol = "https"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		endpoint = strings.TrimRight(endpoint, "/")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, bucket, escapedKey)
	}

	region := c.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, escapedKey)
}

// Remove deletes the object stored under key.
func (c *Client) Remove(ctx context.Context, bucket, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
