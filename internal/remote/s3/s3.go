// Package s3 presents an S3 or MinIO bucket as a browsable folder
// tree: folder ids are key prefixes, files are objects with presigned
// links. Shortcut entries do not exist in this backend.
package s3

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// Config holds S3 connection settings.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	LinkTTL   time.Duration
}

// Lister lists bucket prefixes as folders.
type Lister struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	linkTTL time.Duration
}

// New creates an S3 lister.
func New(ctx context.Context, cfg Config) (*Lister, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	linkTTL := cfg.LinkTTL
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}

	return &Lister{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		linkTTL: linkTTL,
	}, nil
}

// List returns the direct children of a prefix. The empty folder id is
// the bucket root; every other folder id ends with "/".
func (l *Lister) List(ctx context.Context, folderID string) ([]models.Entry, error) {
	prefix := normalizePrefix(folderID)

	var out []models.Entry
	var continuation *string
	for {
		resp, err := l.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(l.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list prefix %q: %w", prefix, err)
		}

		for _, cp := range resp.CommonPrefixes {
			out = append(out, prefixEntry(aws.ToString(cp.Prefix)))
		}
		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// The folder's own zero-byte marker object.
				continue
			}
			entry := models.Entry{
				ID:          key,
				Name:        path.Base(key),
				MimeType:    mimeForKey(key),
				WebViewLink: l.presignLink(ctx, key),
			}
			if obj.LastModified != nil {
				entry.ModifiedTime = *obj.LastModified
			}
			out = append(out, entry)
		}

		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		continuation = resp.NextContinuationToken
	}

	logging.Debug("s3 listing fetched",
		zap.String("prefix", prefix),
		zap.Int("entries", len(out)),
	)
	return out, nil
}

func (l *Lister) presignLink(ctx context.Context, key string) string {
	req, err := l.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(l.linkTTL))
	if err != nil {
		logging.Warn("presign link failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return req.URL
}

func normalizePrefix(folderID string) string {
	if folderID == "" {
		return ""
	}
	if strings.HasSuffix(folderID, "/") {
		return folderID
	}
	return folderID + "/"
}

func prefixEntry(prefix string) models.Entry {
	return models.Entry{
		ID:       prefix,
		Name:     path.Base(strings.TrimSuffix(prefix, "/")),
		MimeType: models.MimeFolder,
	}
}

// extMime pins the course-material types so icons stay stable across
// hosts; the stdlib table depends on the runtime's /etc/mime.types.
var extMime = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func mimeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if m, ok := extMime[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		return m
	}
	return "application/octet-stream"
}
