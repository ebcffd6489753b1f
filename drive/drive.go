package drive

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/atomicleads/videoworker/internal/config"
	"github.com/atomicleads/videoworker/internal/metrics"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// Client uploads rendered videos to S3-compatible storage and hands back
// publicly shareable links.
type Client struct {
	cfg     config.S3Config
	session *session.Session
	maxSize uint64
}

func New(cfg config.S3Config) (*Client, error) {
	maxSize, err := cfg.MaxSizeBytes()
	if err != nil {
		return nil, err
	}
	s3cfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.Key, cfg.Secret, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess, err := session.NewSession(s3cfg)
	if err != nil {
		return nil, err
	}
	c := &Client{cfg: cfg, session: sess, maxSize: maxSize}

	if cfg.CreateBucket {
		logger.Infow("creating s3 bucket", "name", cfg.Bucket)
		client := s3.New(sess)
		_, err := client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(cfg.Bucket),
			ACL:    aws.String("public-read"),
		})
		if err != nil {
			if awsErr, ok := err.(awserr.Error); ok {
				if awsErr.Code() != "BucketAlreadyOwnedByYou" {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
	}

	return c, nil
}

// Upload pushes the file under a title-derived key and returns the object
// location. Long-running, fully occupies the caller.
func (c *Client) Upload(ctx context.Context, filePath, title string) (string, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return "", errors.Wrap(err, "rendered file missing")
	}
	if c.maxSize > 0 && uint64(fi.Size()) > c.maxSize {
		return "", fmt.Errorf("file size %d exceeds configured upload cap %d", fi.Size(), c.maxSize)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := fmt.Sprintf("videos/%s.mp4", slug(title))
	ll := logger.With("file", filePath, "key", key)
	ll.Infow("uploading video", "size", fi.Size())

	up := s3manager.NewUploader(c.session)
	result, err := up.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ACL:         aws.String("public-read"),
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", errors.Wrap(err, "s3 upload failed")
	}
	metrics.UploadedSizeMB.Add(float64(fi.Size()) / 1024 / 1024)

	ll.Infow("upload done", "location", result.Location)
	return result.Location, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
