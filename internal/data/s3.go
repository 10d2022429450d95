package data

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"prizewheel/internal/conf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	maxRetries     = 3
	retryDelay     = time.Second
	uploadTimeout  = 30 * time.Second
	presignExpires = time.Hour * 24 * 3
)

type S3Bucket struct {
	client *s3.Client
	bucket string
	prefix string
	logger *log.Helper
}

// NewS3Bucket 未配置时返回 nil，清单发布被跳过
func NewS3Bucket(c *conf.Data, logger log.Logger) (*S3Bucket, func(), error) {
	l := log.NewHelper(logger)

	sc := c.GetS3()
	if sc == nil || sc.Bucket == "" {
		l.Info("s3 not configured, manifests are served from memory only")
		return nil, func() {}, nil
	}

	configOptions := []func(*config.LoadOptions) error{
		config.WithRegion(sc.Region),
	}
	if sc.AccessKeyId != "" {
		configOptions = append(configOptions, config.WithCredentialsProvider(
			aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     sc.AccessKeyId,
					SecretAccessKey: sc.SecretAccessKey,
				}, nil
			})))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOptions...)
	if err != nil {
		l.Errorf("failed loading AWS config: %v", err)
		return nil, nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			l.Infof("Using custom S3 endpoint: %s", sc.Endpoint)
		}
		o.UsePathStyle = sc.UsePathStyle
	})

	cleanup := func() {
		l.Info("S3 uploader closed")
	}
	return &S3Bucket{
		client: client,
		bucket: sc.Bucket,
		prefix: strings.Trim(sc.Prefix, "/"),
		logger: l,
	}, cleanup, nil
}

// Key 拼接对象前缀
func (s *S3Bucket) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put 上传并返回预签名的下载地址，失败按次数线性退避重试
func (s *S3Bucket) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(i)):
			}
			s.logger.Infof("Retry upload %d/%d: %s", i, maxRetries-1, key)
		}

		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
			Body:        bytes.NewReader(data),
		})
		cancel()
		if err != nil {
			lastErr = err
			s.logger.Warnf("Upload attempt %d/%d failed: %v", i+1, maxRetries, err)
			continue
		}

		presigned, err := s3.NewPresignClient(s.client).PresignGetObject(ctx,
			&s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			},
			s3.WithPresignExpires(presignExpires),
		)
		if err != nil {
			lastErr = fmt.Errorf("failed to generate presigned GET URL: %w", err)
			s.logger.Warnf("Failed to generate presigned GET URL: %v", err)
			continue
		}
		s.logger.Infof("S3 upload success: bucket=%s, key=%s", s.bucket, key)
		return presigned.URL, nil
	}
	return "", fmt.Errorf("upload failed after %d attempts: %w", maxRetries, lastErr)
}

// PublishManifest 上传 manifests/<wheel>.json，未配置 S3 时返回空
func (r *dataRepo) PublishManifest(ctx context.Context, wheelID string, body []byte) (string, error) {
	s := r.data.s3Bucket
	if s == nil {
		return "", nil
	}
	return s.Put(ctx, s.Key("manifests/"+wheelID+".json"), "application/json", body)
}
