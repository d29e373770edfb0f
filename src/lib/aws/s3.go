package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
	"vrs/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Storage keeps uploads in a bucket and serves them through presigned URLs.
type S3Storage struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
	expires time.Duration
}

func GetS3Client() *s3.Client {
	cfg, err := lib.AWSGetConfig()
	if err != nil {
		log.Printf("Failed to initialize S3: %s\n", err.Error())
		return nil
	}
	return s3.NewFromConfig(*cfg)
}

func NewS3Storage(bucket string) (*S3Storage, error) {
	client := GetS3Client()
	if client == nil {
		return nil, fmt.Errorf("s3 client is not available")
	}
	return &S3Storage{
		bucket:  bucket,
		client:  client,
		presign: s3.NewPresignClient(client),
		expires: time.Hour,
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return "", err
	}
	err = s3.NewObjectExistsWaiter(s.client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return "", err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, s.bucket)
	return s.URL(ctx, key)
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		log.Printf("Could not delete object [%s]: %s\n", key, err.Error())
		return err
	}
	return nil
}

func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	r, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = s.expires
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return "", err
	}
	return r.URL, nil
}
