package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry is how long a presigned photo URL stays valid
const PresignExpiry = 5 * time.Minute

// Presigner is the subset of s3.PresignClient the photo service uses
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PhotoService hands out presigned S3 URLs for profile photos
type PhotoService struct {
	Presigner Presigner
	Bucket    string

	now func() time.Time
}

// NewPhotoService creates a PhotoService around an existing presigner
func NewPhotoService(p Presigner, bucket string) *PhotoService {
	return &PhotoService{Presigner: p, Bucket: bucket, now: time.Now}
}

// NewS3PhotoService loads the default AWS config and presigns against bucket
func NewS3PhotoService(ctx context.Context, region, bucket string) (*PhotoService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewPhotoService(s3.NewPresignClient(s3.NewFromConfig(cfg)), bucket), nil
}

// UploadURL presigns a PUT for a new photo owned by userID and returns the URL and object key
func (s *PhotoService) UploadURL(ctx context.Context, userID, fileName, fileType string) (string, string, error) {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		return "", "", invalid("fileName", "is required")
	}
	if !strings.HasPrefix(fileType, "image/") {
		return "", "", invalid("fileType", "must be an image type")
	}

	key := "profile-pics/" + userID + "/" + s.now().UTC().Format("20060102150405") + "-" + name
	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, key, nil
}

// ReadURL presigns a GET for an existing photo key
func (s *PhotoService) ReadURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", invalid("key", "is required")
	}

	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return req.URL, nil
}
