package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	sdkcfg "github.com/aws/aws-sdk-go-v2/config"
	sdksss "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/facebook/dotslash/artifact"
)

// s3ProviderConfig is the "s3" provider's config object.
type s3ProviderConfig struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Region string `json:"region"`
}

// S3Provider fetches an artifact object out of an S3 bucket.
//
// The Rust original shells out to `aws s3 cp`. Grounded on how
// nabbar/golib's aws/object package wraps aws-sdk-go-v2's s3.Client.GetObject
// (see its Object.Get method), this calls the SDK directly instead of
// wrapping nabbar/golib's full multi-service client facade, since a single
// GetObject call doesn't need its IAM/bucket/group/policy surface.
type S3Provider struct {
	newClient func(ctx context.Context, region string) (s3GetObjectAPI, error)
}

// s3GetObjectAPI is the slice of *s3.Client this provider needs, narrowed so
// tests can substitute a fake without standing up real AWS credentials.
type s3GetObjectAPI interface {
	GetObject(ctx context.Context, in *sdksss.GetObjectInput, opts ...func(*sdksss.Options)) (*sdksss.GetObjectOutput, error)
}

// NewS3Provider returns an S3Provider that builds a client per fetch from
// the ambient AWS credential chain (environment, shared config, EC2/ECS
// role), overriding the region when the provider config specifies one.
func NewS3Provider() *S3Provider {
	return &S3Provider{newClient: defaultS3Client}
}

func defaultS3Client(ctx context.Context, region string) (s3GetObjectAPI, error) {
	var opts []func(*sdkcfg.LoadOptions) error
	if region != "" {
		opts = append(opts, sdkcfg.WithRegion(region))
	}
	cfg, err := sdkcfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sdksss.NewFromConfig(cfg), nil
}

// Fetch implements Provider.
func (p *S3Provider) Fetch(ctx context.Context, config json.RawMessage, destination string, entry artifact.Entry) error {
	var cfg s3ProviderConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("provider: s3: decode config: %w", err)
	}
	if cfg.Bucket == "" || cfg.Key == "" {
		return fmt.Errorf("provider: s3: config requires \"bucket\" and \"key\"")
	}

	client, err := p.newClient(ctx, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to fetch `s3://%s/%s`: %w", cfg.Bucket, cfg.Key, err)
	}

	out, err := client.GetObject(ctx, &sdksss.GetObjectInput{
		Bucket: &cfg.Bucket,
		Key:    &cfg.Key,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch `s3://%s/%s`: %w", cfg.Bucket, cfg.Key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create %s: %w", destination, err)
	}
	_, copyErr := io.Copy(f, out.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("failed to fetch `s3://%s/%s`: write %s: %w", cfg.Bucket, cfg.Key, destination, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", destination, closeErr)
	}
	return nil
}
