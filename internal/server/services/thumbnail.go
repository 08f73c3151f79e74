package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/viewstore/internal/common"
	sc "github.com/dmitrijs2005/viewstore/internal/server/config"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/rs/xid"
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

// viewReader is the part of ViewService the thumbnail flow depends on.
type viewReader interface {
	ReadView(ctx context.Context, p models.QueryViewParams) (*models.View, error)
}

// ThumbnailUpload is a presigned PUT target. After uploading, the client
// stores Key as the view's thumbnail with UpdateView.
type ThumbnailUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ThumbnailService hands out presigned S3 URLs for view thumbnails. The
// thumbnail column holds the object key.
type ThumbnailService struct {
	views  viewReader
	config *sc.Config
	now    func() time.Time
}

func NewThumbnailService(views viewReader, config *sc.Config) *ThumbnailService {
	return &ThumbnailService{views: views, config: config, now: time.Now}
}

// ThumbnailURL returns a presigned GET URL for the view's thumbnail.
// A view without a thumbnail yields common.ErrorNotFound.
func (s *ThumbnailService) ThumbnailURL(ctx context.Context, viewID string) (string, error) {
	view, err := s.views.ReadView(ctx, models.QueryViewParams{ViewID: viewID})
	if err != nil {
		return "", err
	}
	if view.Thumbnail == "" {
		return "", fmt.Errorf("thumbnail of view %s: %w", view.ID, common.ErrorNotFound)
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &view.Thumbnail,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// ThumbnailUploadURL returns a fresh object key under the view and a
// presigned PUT URL for it. The view must exist.
func (s *ThumbnailService) ThumbnailUploadURL(ctx context.Context, viewID string) (*ThumbnailUpload, error) {
	view, err := s.views.ReadView(ctx, models.QueryViewParams{ViewID: viewID})
	if err != nil {
		return nil, err
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(view.ID)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	return &ThumbnailUpload{Key: key, URL: req.URL}, nil
}

func (s *ThumbnailService) storageKey(viewID string) string {
	d := s.now().UTC()
	return fmt.Sprintf("views/%s/%d/%02d/%02d/%v", viewID, d.Year(), d.Month(), d.Day(), xid.New())
}

func (s *ThumbnailService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}
