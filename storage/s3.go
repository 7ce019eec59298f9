package storage

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Bucket is a Bucket implementation that keeps game archives in AWS S3.
// The following environment variables must be set:
// AWS_REGION
// AWS_ACCESS_KEY_ID
// AWS_SECRET_ACCESS_KEY
type S3Bucket struct {
	// From aws go documentation:
	// Sessions should be cached when possible, because creating a new Session
	// will load all configuration values from the environment, and config files
	// each time the Session is created.
	sess *session.Session
	// s3 clients are safe to use concurrently.
	svc    *s3.S3
	bucket string
}

// NewS3Bucket initializes a new S3Bucket using an env-configured AWS
// session. arg bucket is the name of the S3 bucket holding the archives.
func NewS3Bucket(bucket string) *S3Bucket {
	sess := session.Must(session.NewSession())
	return NewS3BucketWithSession(sess, bucket)
}

// NewS3BucketWithSession initializes a new S3Bucket with a caller provided
// AWS session. Used by tests to point at a fake S3 server.
func NewS3BucketWithSession(sess *session.Session, bucket string) *S3Bucket {
	// Create S3 service client (note: s3 clients are safe to use concurrently)
	svc := s3.New(sess)

	b := S3Bucket{
		sess:   sess,
		svc:    svc,
		bucket: bucket,
	}

	return &b
}

// ensureBucket creates the backing bucket if needed.
func (s3b *S3Bucket) ensureBucket() error {
	if _, err := s3b.svc.CreateBucket(&s3.CreateBucketInput{Bucket: &s3b.bucket}); err != nil {
		if aerr, ok := err.(awserr.Error); !ok {
			return err
		} else if aerr.Code() != s3.ErrCodeBucketAlreadyExists &&
			aerr.Code() != s3.ErrCodeBucketAlreadyOwnedByYou {
			return err
		}
	}
	return s3b.svc.WaitUntilBucketExists(&s3.HeadBucketInput{Bucket: &s3b.bucket})
}

// Store uploads an archive to the bucket, creating the bucket if needed.
func (s3b *S3Bucket) Store(ctx context.Context, f io.Reader, name string) error {
	if err := s3b.ensureBucket(); err != nil {
		return err
	}

	// Create an uploader with S3 client and default options
	uploader := s3manager.NewUploaderWithClient(s3b.svc)
	_, err := uploader.Upload(&s3manager.UploadInput{
		Body:   f,
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})
	return err
}

// Open returns a reader for a stored archive and its size in bytes.
func (s3b *S3Bucket) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	out, err := s3b.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, 0, err
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

// Remove deletes an archive from the bucket.
func (s3b *S3Bucket) Remove(ctx context.Context, name string) error {
	_, err := s3b.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return err
	}

	return s3b.svc.WaitUntilObjectNotExists(&s3.HeadObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})
}

// Size returns the size in bytes of a stored archive.
func (s3b *S3Bucket) Size(ctx context.Context, name string) (int64, error) {
	out, err := s3b.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

// DownloadLink returns a presign'ed URL to download an archive directly
// from S3. The server's own base URL is not used.
func (s3b *S3Bucket) DownloadLink(ctx context.Context, name, baseURL string) (string, error) {
	// https://stackoverflow.com/questions/35245649/aws-s3-large-file-reverse-proxying-with-golangs-http-responsewriter
	req, _ := s3b.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(name),
	})

	return req.Presign(5 * time.Minute)
}
