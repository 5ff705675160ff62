package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// R2Config holds the Cloudflare R2 bucket settings.
type R2Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

func (c R2Config) complete() bool {
	return c.AccountID != "" && c.BucketName != "" && c.AccessKeyID != "" &&
		c.SecretAccessKey != "" && c.PublicURL != ""
}

// R2Client stores objects in a Cloudflare R2 bucket through its S3 API.
type R2Client struct {
	s3Client   *s3.Client
	bucketName string
	publicURL  string // Base public URL for the bucket (e.g., https://pub-xxxxxxxx.r2.dev)
}

// NewR2Client creates an R2 client. It returns (nil, nil) when R2 is not fully
// configured, so uploads fall back to local disk.
func NewR2Client(ctx context.Context, cfg R2Config) (*R2Client, error) {
	if !cfg.complete() {
		log.Println("WARN: Cloudflare R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL). Files will be stored on local disk.")
		return nil, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})

	log.Printf("INFO: R2 Client initialized for bucket '%s'", cfg.BucketName)
	return &R2Client{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}, nil
}

// Put uploads r under key and returns the object's public URL.
func (c *R2Client) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("R2 client not initialized")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// The SDK needs a seekable body to checksum the upload.
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to R2 (key: %s): %w", key, err)
	}

	publicFileURL, err := c.objectURL(key)
	if err != nil {
		return "", err
	}
	log.Printf("INFO: Successfully uploaded file to R2: %s", publicFileURL)
	return publicFileURL, nil
}

func (c *R2Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if c == nil || c.s3Client == nil {
		return nil, fmt.Errorf("R2 client not initialized")
	}
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get R2 object %s: %w", key, err)
	}
	return out.Body, nil
}

func (c *R2Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.s3Client == nil {
		return fmt.Errorf("R2 client not initialized")
	}
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete R2 object %s: %w", key, err)
	}
	return nil
}

func (c *R2Client) objectURL(key string) (string, error) {
	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		log.Printf("ERROR: Failed to parse R2 public base URL '%s': %v", c.publicURL, err)
		return "", fmt.Errorf("invalid R2 public base URL configured")
	}
	baseURL.Path = path.Join(baseURL.Path, key)
	return baseURL.String(), nil
}
