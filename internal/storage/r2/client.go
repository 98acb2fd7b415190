package r2

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"judicial-archive/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("r2 storage not configured")

// Client presigns paper attachment transfers against a Cloudflare R2 (or
// any S3 compatible) bucket.
type Client struct {
	bucket     string
	presignTTL time.Duration

	s3      *s3.Client
	presign *s3.PresignClient
}

func New(ctx context.Context, cfg config.Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.R2Endpoint)
	bucket := strings.TrimSpace(cfg.R2Bucket)
	accessKey := strings.TrimSpace(cfg.R2AccessKeyID)
	secret := strings.TrimSpace(cfg.R2SecretAccessKey)

	if endpoint == "" || bucket == "" || accessKey == "" || secret == "" {
		return nil, ErrNotConfigured
	}

	presignTTL := cfg.R2PresignTTL
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}

	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid r2 endpoint: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.R2Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secret, "")),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				if cfg.R2MaxAttempts > 0 {
					o.MaxAttempts = cfg.R2MaxAttempts
				}
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		bucket:     bucket,
		presignTTL: presignTTL,
		s3:         s3Client,
		presign: s3.NewPresignClient(s3Client, func(o *s3.PresignOptions) {
			o.Expires = presignTTL
		}),
	}, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) PresignTTL() time.Duration {
	return c.presignTTL
}

type PresignedURL struct {
	URL            string              `json:"url"`
	Key            string              `json:"key"`
	SignedHeaders  map[string][]string `json:"signedHeaders"`
	ExpiresSeconds int                 `json:"expiresSeconds"`
}

// ObjectKey places a paper's attachment under papers/<paperID>/ keeping
// only the base name of the uploaded file.
func ObjectKey(paperID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return path.Join("papers", paperID, name)
}

func (c *Client) PresignPutObject(ctx context.Context, key string, contentType string) (PresignedURL, error) {
	if c == nil {
		return PresignedURL{}, ErrNotConfigured
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	out, err := c.presign.PresignPutObject(ctx, input)
	if err != nil {
		return PresignedURL{}, err
	}

	return c.presigned(key, out.URL, out.SignedHeader), nil
}

func (c *Client) PresignGetObject(ctx context.Context, key string, responseContentType string, contentDisposition string) (PresignedURL, error) {
	if c == nil {
		return PresignedURL{}, ErrNotConfigured
	}

	input := &s3.GetObjectInput{Bucket: aws.String(c.bucket), Key: aws.String(key)}
	if strings.TrimSpace(responseContentType) != "" {
		input.ResponseContentType = aws.String(responseContentType)
	}
	if strings.TrimSpace(contentDisposition) != "" {
		input.ResponseContentDisposition = aws.String(contentDisposition)
	}

	out, err := c.presign.PresignGetObject(ctx, input)
	if err != nil {
		return PresignedURL{}, err
	}

	return c.presigned(key, out.URL, out.SignedHeader), nil
}

func (c *Client) presigned(key, u string, headers map[string][]string) PresignedURL {
	return PresignedURL{URL: u, Key: key, SignedHeaders: headers, ExpiresSeconds: int(c.presignTTL.Seconds())}
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if c == nil {
		return ErrNotConfigured
	}

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(c.bucket), Key: aws.String(key)})
	return err
}
