// Package objectstore wraps S3 for image persistence: upload from a source
// URL, signed read URLs, and raw object reads for proxying.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
)

const (
	// SignedURLTTL is how long generated read URLs stay valid.
	SignedURLTTL = 7 * 24 * time.Hour

	cacheControl  = "public, max-age=31536000"
	fetchTimeout  = 30 * time.Second
	maxImageBytes = 10 << 20
)

// Client talks to one S3 bucket.
type Client struct {
	s3         *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	region     string
	httpClient *http.Client
}

// New loads AWS configuration from the environment and returns a client
// bound to bucket.
func New(ctx context.Context, region, bucket string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(cfg)
	return &Client{
		s3:         api,
		presigner:  s3.NewPresignClient(api),
		bucket:     bucket,
		region:     region,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// UploadResult describes a stored image.
type UploadResult struct {
	SignedURL   string
	S3Key       string
	Filename    string
	Size        int
	ContentType string
}

// UploadFromURL fetches the image at sourceURL, verifies it carries a
// recognized image signature, and stores it under a generated key. The
// returned URL is presigned for reading.
func (c *Client) UploadFromURL(ctx context.Context, sourceURL, gestureType string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	data, err := c.fetchImage(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	contentType, ok := DetectImageType(data)
	if !ok {
		return nil, httperr.InvalidInput("Invalid or corrupted image")
	}

	key := Filename(gestureType, time.Now())
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return nil, classify(err, "Failed to upload image")
	}

	signed, err := c.presign(ctx, key)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		SignedURL:   signed,
		S3Key:       key,
		Filename:    key,
		Size:        len(data),
		ContentType: contentType,
	}, nil
}

func (c *Client) fetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, httperr.Wrap(httperr.KindInvalidInput, err, "Invalid image URL")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, httperr.Wrap(httperr.KindTimeout, err, "Image fetch timed out")
		}
		return nil, httperr.Wrap(httperr.KindInvalidInput, err, "Failed to fetch source image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httperr.InvalidInput(fmt.Sprintf("Failed to fetch image: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, httperr.Wrap(httperr.KindTimeout, err, "Image fetch timed out")
		}
		return nil, httperr.Wrap(httperr.KindInvalidInput, err, "Failed to read source image")
	}
	if len(data) > maxImageBytes {
		return nil, httperr.InvalidInput("File too large")
	}
	return data, nil
}

// SignedURL resolves s3URL to a key and returns a presigned read URL for it.
func (c *Client) SignedURL(ctx context.Context, s3URL string) (signedURL, key string, err error) {
	key, err = ExtractKey(c.bucket, s3URL)
	if err != nil {
		return "", "", err
	}
	signedURL, err = c.presign(ctx, key)
	if err != nil {
		return "", "", err
	}
	return signedURL, key, nil
}

func (c *Client) presign(ctx context.Context, key string) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = SignedURLTTL
	})
	if err != nil {
		return "", classify(err, "Failed to generate signed URL")
	}
	return req.URL, nil
}

// Object reads the object behind s3URL for proxying.
func (c *Client) Object(ctx context.Context, s3URL string) (data []byte, contentType string, err error) {
	key, err := ExtractKey(c.bucket, s3URL)
	if err != nil {
		return nil, "", err
	}

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", httperr.Wrap(httperr.KindNotFound, err, "Image not found")
		}
		return nil, "", classify(err, "Failed to proxy image")
	}
	defer out.Body.Close()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, "", httperr.Wrap(httperr.KindInternal, err, "Failed to proxy image")
	}

	contentType = "image/png"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}
	return data, contentType, nil
}

// classify maps S3 errors to structured kinds: credential problems are a
// temporary service condition, deadline expiry is a timeout, anything else
// is an internal fault.
func classify(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return httperr.Wrap(httperr.KindTimeout, err, "Storage operation timed out")
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "AccessDenied":
			return httperr.Wrap(httperr.KindUnavailable, err, "Storage service temporarily unavailable")
		}
	}
	return httperr.Wrap(httperr.KindInternal, err, msg)
}
