package utils

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
)

// R2Archiver uploads accrual run reports to Cloudflare R2 (S3-compatible)
// for audit. Each run lands at accrual-runs/<date>.json.
type R2Archiver struct {
	cfg *appconfig.Config
}

func NewR2Archiver(cfg *appconfig.Config) *R2Archiver {
	return &R2Archiver{cfg: cfg}
}

func (a *R2Archiver) client(ctx context.Context) (*s3.Client, error) {
	if !a.cfg.R2Configured() {
		return nil, fmt.Errorf("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, atau R2_SECRET_ACCESS_KEY belum diatur")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"), // Required by SDK, R2 ignores this
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.cfg.R2AccessKeyID, a.cfg.R2SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("gagal load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", a.cfg.R2AccountID)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// Archive stores the serialized run report under the run date.
func (a *R2Archiver) Archive(ctx context.Context, runDate time.Time, payload []byte) error {
	client, err := a.client(ctx)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("accrual-runs/%s.json", runDate.Format("2006-01-02"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.R2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("R2 upload gagal: %w", err)
	}
	return nil
}
