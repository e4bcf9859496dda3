package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Config struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	// URLExpiry is the lifetime of the presigned GET URLs handed out.
	URLExpiry time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Archive uploads audio to an S3-compatible bucket (MinIO in development)
// and returns presigned GET URLs.
type S3Archive struct {
	client    objectPutter
	presigner objectPresigner
	bucket    string
	expiry    time.Duration
	now       func() time.Time
}

func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	return &S3Archive{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		expiry:    expiry,
		now:       time.Now,
	}, nil
}

func (a *S3Archive) objectKey(accountID string) string {
	d := a.now().UTC()
	return fmt.Sprintf("samples/%s/%d/%02d/%02d/%s.mp3", accountID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *S3Archive) Put(ctx context.Context, accountID string, audio []byte, contentType string) (string, error) {
	key := a.objectKey(accountID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(audio),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(audio))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.expiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
