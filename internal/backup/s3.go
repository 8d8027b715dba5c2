package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver keeps a timestamped copy of every saved document.
type S3Archiver struct {
	client PutObjectAPI
	bucket string
	log    *slog.Logger
	now    func() time.Time
}

// NewS3Archiver creates an archiver writing under backups/ in bucket.
func NewS3Archiver(client PutObjectAPI, bucket string, logger *slog.Logger) *S3Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Archiver{client: client, bucket: bucket, log: logger, now: time.Now}
}

func (a *S3Archiver) Name() string { return "s3" }

// Key returns the object key for a backup taken at t.
func Key(t time.Time) string {
	return "backups/" + t.UTC().Format("20060102T150405.000Z") + ".json"
}

func (a *S3Archiver) Notify(ctx context.Context, doc []byte) error {
	key := Key(a.now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &a.bucket,
		Key:           &key,
		Body:          bytes.NewReader(doc),
		ContentType:   aws.String("application/json; charset=utf-8"),
		ContentLength: aws.Int64(int64(len(doc))),
	})
	if err != nil {
		return fmt.Errorf("upload backup to s3: %w", err)
	}
	a.log.InfoContext(ctx, "Backup archived", "bucket", a.bucket, "key", key)
	return nil
}
