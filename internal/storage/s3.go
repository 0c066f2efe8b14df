package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

const csvContentType = "text/csv"

// ObjectPutter is the subset of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies a run's CSV files into a bucket under a fixed prefix.
type S3Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, region, bucket, prefix string) (*S3Uploader, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3UploaderWithClient(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

func NewS3UploaderWithClient(client ObjectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey is the bucket key a local file is stored under.
func (u *S3Uploader) ObjectKey(localPath string) string {
	return path.Join(u.prefix, filepath.Base(localPath))
}

// Upload puts the article and comment files of run into the bucket and
// records their keys in the manifest. A missing local file is logged and
// skipped.
func (u *S3Uploader) Upload(ctx context.Context, run *models.RunContext) error {
	files := []struct {
		local string
		key   *string
	}{
		{run.Manifest.ArticlesFile, &run.Manifest.ArticlesKey},
		{run.Manifest.CommentsFile, &run.Manifest.CommentsKey},
	}
	for _, f := range files {
		if f.local == "" {
			continue
		}
		key, err := u.put(ctx, f.local)
		if err != nil {
			return err
		}
		*f.key = key
	}
	return nil
}

func (u *S3Uploader) put(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("Local file not found, skipping upload", "path", localPath)
			return "", nil
		}
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer file.Close()

	key := u.ObjectKey(localPath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("uploading %s to s3://%s/%s: %s: %w", localPath, u.bucket, key, apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("uploading %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}
	slog.Info("Uploaded file", "path", localPath, "bucket", u.bucket, "key", key)
	return key, nil
}
