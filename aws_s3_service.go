package smile_request_report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	s3Scheme          = "s3://"
	reportContentType = "text/tab-separated-values"
)

type AWSS3Service struct {
	saml2AWSBin     string
	samlProfile     string
	samlRegion      string
	sessionStart    time.Time
	sessionDuration float64
	client          *s3.Client
}

func NewAWSS3Service(saml2awsBin, samlProfile, samlRegion string, sessionDuration float64) *AWSS3Service {
	return &AWSS3Service{saml2AWSBin: saml2awsBin, samlProfile: samlProfile, samlRegion: samlRegion, sessionDuration: sessionDuration}
}

// ParseS3URL splits s3://bucket/key. ok is false for anything else.
func ParseS3URL(path string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(path, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(path, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// GetLogObject opens a request log stored in S3. The caller closes the body.
func (a *AWSS3Service) GetLogObject(ctx context.Context, bucketKey, bucketName string) (io.ReadCloser, error) {
	s3Client, err := a.getClient()
	if err != nil {
		return nil, fmt.Errorf("Failed to create S3 client %s:%s: %q", bucketName, bucketKey, err)
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(bucketKey),
	}
	output, err := s3Client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("Failed to get object %s:%s: %v", bucketName, bucketKey, err)
	}
	return output.Body, nil
}

// PutReport uploads a finished report.
func (a *AWSS3Service) PutReport(ctx context.Context, bucketKey, bucketName string, report []byte) error {
	s3Client, err := a.getClient()
	if err != nil {
		return fmt.Errorf("Failed to get s3 client: '%s': %q", bucketKey, err)
	}
	err = putObject(ctx, s3Client, report, bucketKey, bucketName)
	if err != nil {
		return fmt.Errorf("Failed to PutReport: '%s': %q", bucketKey, err)
	}
	return nil
}

func putObject(ctx context.Context, client *s3.Client, content []byte, bucketKey, bucketName string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(bucketKey),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(reportContentType),
	}

	_, err := client.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("Failed to upload object, %v", err)
	}

	return nil
}

func (a *AWSS3Service) DeleteObject(ctx context.Context, bucketKey, bucketName string) error {
	s3Client, err := a.getClient()
	if err != nil {
		return fmt.Errorf("Failed to create S3 client %s:%s: %q", bucketName, bucketKey, err)
	}
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(bucketKey),
	}

	_, err = s3Client.DeleteObject(ctx, input)
	if err != nil {
		return fmt.Errorf("Failed to delete object, %v", err)
	}
	return nil
}

func generateToken(saml2awsBin string) error {
	cmd := exec.Command("sh", saml2awsBin)
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("Failed to run %q, err: %v", saml2awsBin, err)
	}
	return nil
}

func createClient(credsProfile, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithSharedConfigProfile(credsProfile))
	if err != nil {
		return nil, fmt.Errorf("Failed to load SDK configuration: %v", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (a *AWSS3Service) getClient() (*s3.Client, error) {
	if a.client == nil || a.sessionIsExpired() {
		err := generateToken(a.saml2AWSBin)
		if err != nil {
			return nil, fmt.Errorf("Failed to generate AWS token: %q", err)
		}
		// saml2AWS returns without error, but without being fully setup, lets pause
		time.Sleep(time.Minute)
		s3Client, err := createClient(a.samlProfile, a.samlRegion)
		if err != nil {
			return nil, fmt.Errorf("Failed to create S3 client: %q", err)
		}

		a.sessionStart = time.Now()
		a.client = s3Client
	}
	return a.client, nil
}

func (a *AWSS3Service) sessionIsExpired() bool {
	return time.Since(a.sessionStart).Seconds() >= a.sessionDuration
}
