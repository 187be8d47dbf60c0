package precomputed

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-resilience/pkg/config"
)

// ObjectAPI is the subset of the S3 client used by Uploader
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Uploader mirrors the precomputed artifact to one S3 object
type Uploader struct {
	Bucket string
	Key    string
	Client ObjectAPI
}

type uploaderOptions struct {
	endpoint string
	keyID    string
	secret   string
}

// UploaderOption customizes NewUploader
type UploaderOption func(*uploaderOptions)

// WithEndpoint targets an S3-compatible service such as MinIO. Path-style
// addressing is used.
func WithEndpoint(url string) UploaderOption {
	return func(o *uploaderOptions) { o.endpoint = url }
}

// WithStaticCredentials replaces the default credential chain
func WithStaticCredentials(keyID, secret string) UploaderOption {
	return func(o *uploaderOptions) {
		o.keyID = keyID
		o.secret = secret
	}
}

// NewUploader loads the default AWS configuration (environment, shared
// config, instance role). An empty region keeps the configured default.
func NewUploader(ctx context.Context, bucket, key, region string, opts ...UploaderOption) (*Uploader, error) {
	var o uploaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if o.endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithBaseEndpoint(o.endpoint))
	}
	if o.keyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.keyID, o.secret, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.UsePathStyle = o.endpoint != ""
	})
	return &Uploader{Bucket: bucket, Key: key, Client: client}, nil
}

// NewUploaderFromConfig builds the uploader for the configured S3 mirror
func NewUploaderFromConfig(ctx context.Context, cfg config.PrecomputedConfig) (*Uploader, error) {
	var opts []UploaderOption
	if cfg.S3Endpoint != "" {
		opts = append(opts, WithEndpoint(cfg.S3Endpoint))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, WithStaticCredentials(cfg.S3AccessKeyID, cfg.S3SecretAccessKey))
	}
	return NewUploader(ctx, cfg.S3Bucket, cfg.S3Key, cfg.S3Region, opts...)
}

// URI returns the s3:// location of the object
func (u *Uploader) URI() string {
	return "s3://" + u.Bucket + "/" + u.Key
}

// Upload stores the encoded contents of store
func (u *Uploader) Upload(ctx context.Context, store *Store) error {
	data, err := store.Bytes()
	if err != nil {
		return fmt.Errorf("encode precomputed results: %w", err)
	}
	contentType := "application/json"
	if store.Compressed() {
		contentType = "application/x-snappy-framed"
	}
	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(u.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", u.URI(), err)
	}
	return nil
}

// Download fetches the object and merges its regions into store
func (u *Uploader) Download(ctx context.Context, store *Store) error {
	resp, err := u.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(u.Key),
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", u.URI(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", u.URI(), err)
	}
	set, err := Decode(bytes.NewReader(body), store.Compressed())
	if err != nil {
		return fmt.Errorf("%s: %w", u.URI(), err)
	}
	store.Merge(set)
	return nil
}
