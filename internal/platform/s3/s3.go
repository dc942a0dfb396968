// Package s3 is for delivering converted files to an AWS S3 staging
// bucket.
package s3

import (
	"bytes"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3 struct {
	client *s3.S3
}

// New returns an S3 using the default AWS credentials chain.
// This consults (in order) environment vars, config files, ec2 and ecs roles.
// It is an error if the AWS_REGION environment variable is not set.
// Requests with recoverable errors will be retried with the default retrier
// with back off up to maxRetries times.
func New(maxRetries int) (S3, error) {
	if os.Getenv("AWS_REGION") == "" {
		return S3{}, errors.New("AWS_REGION is not set")
	}

	sess, err := session.NewSession()
	if err != nil {
		return S3{}, err
	}

	sess.Config.Retryer = client.DefaultRetryer{NumMaxRetries: maxRetries}

	return S3{client: s3.New(sess)}, nil
}

// Put stores b in bucket under key.
func (s *S3) Put(bucket, key string, b []byte) error {
	params := s3.PutObjectInput{
		Key:    aws.String(key),
		Bucket: aws.String(bucket),
		Body:   bytes.NewReader(b),
	}

	_, err := s.client.PutObject(&params)

	return err
}
