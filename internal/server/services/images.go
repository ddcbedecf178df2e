package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	sc "github.com/dmitrijs2005/foodgram/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignExpiry = 15 * time.Minute

// Storage key prefixes for recipe images and user avatars.
const (
	RecipeKeyPrefix = "recipes/"
	AvatarKeyPrefix = "users/"
)

// ImageService hands out presigned S3 URLs for recipe images and avatars.
// Image bytes never pass through the API server.
type ImageService struct {
	config *sc.Config

	mu      sync.Mutex
	presign *s3.PresignClient
}

func NewImageService(config *sc.Config) *ImageService {
	return &ImageService{config: config}
}

// GetRandomStorageKey returns a fresh object key under prefix.
func GetRandomStorageKey(prefix string) string {
	d := time.Now()
	return fmt.Sprintf("%s%d/%d/%d/%v", prefix, d.Year(), d.Month(), d.Day(), uuid.New())
}

// getPresignClient builds the presign client on first use and reuses it
// afterwards. A failed build is not cached, so the next call retries.
func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presign != nil {
		return s.presign, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		// MinIO serves buckets under the path, not as subdomains
		o.UsePathStyle = true
	})

	s.presign = newS3PresignClient(client)
	return s.presign, nil
}

// PresignUpload allocates a recipe image key and returns it together with a
// presigned PUT URL the client uploads the image to.
func (s *ImageService) PresignUpload(ctx context.Context) (string, string, error) {
	return s.presignUpload(ctx, RecipeKeyPrefix)
}

// PresignAvatarUpload is PresignUpload for user avatars.
func (s *ImageService) PresignAvatarUpload(ctx context.Context) (string, string, error) {
	return s.presignUpload(ctx, AvatarKeyPrefix)
}

func (s *ImageService) presignUpload(ctx context.Context, prefix string) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(prefix)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// URL returns a presigned GET URL for key. Recipes without an image have an
// empty key and get an empty URL.
func (s *ImageService) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
