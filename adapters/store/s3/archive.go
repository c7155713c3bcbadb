// Package stores3 archives exported documents in S3-compatible object storage
// (AWS S3, MinIO, RustFS).
package stores3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goliatone/go-resume/resume"
)

// Config holds the object storage settings.
type Config struct {
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	// Prefix is prepended to every object key.
	Prefix            string
	PresignExpiration time.Duration
}

// ObjectAPI is the subset of the S3 client used by Archive.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used by Archive.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Archive uploads delivered documents under timestamped keys.
type Archive struct {
	client            ObjectAPI
	presign           PresignAPI
	bucket            string
	prefix            string
	presignExpiration time.Duration
	Now               func() time.Time

	mu      sync.Mutex
	lastKey string
}

var _ resume.Deliverer = (*Archive)(nil)

// NewArchive builds an S3 client from cfg.
func NewArchive(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, resume.NewError(resume.KindValidation, "storage bucket is required", nil)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, resume.NewError(resume.KindValidation, "storage credentials are required", nil)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, resume.NewError(resume.KindInternal, "failed to create aws config", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := NewArchiveWithClient(client, s3.NewPresignClient(client), cfg.Bucket, cfg.Prefix)
	if cfg.PresignExpiration > 0 {
		archive.presignExpiration = cfg.PresignExpiration
	}
	return archive, nil
}

// NewArchiveWithClient creates an archive over existing clients. presign may
// be nil.
func NewArchiveWithClient(client ObjectAPI, presign PresignAPI, bucket, prefix string) *Archive {
	return &Archive{
		client:            client,
		presign:           presign,
		bucket:            bucket,
		prefix:            strings.Trim(prefix, "/"),
		presignExpiration: 15 * time.Minute,
	}
}

// Deliver uploads doc and remembers its key.
func (a *Archive) Deliver(ctx context.Context, doc resume.Document) error {
	if a == nil || a.client == nil {
		return resume.NewError(resume.KindNotImpl, "object storage not configured", nil)
	}
	if len(doc.Data) == 0 {
		return resume.NewError(resume.KindValidation, "document is empty", nil)
	}
	filename := doc.Filename
	if filename == "" {
		filename = resume.DefaultFilename
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	key := a.objectKey(filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(doc.Data),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(resume.AttachmentDisposition(filename)),
		ContentLength:      aws.Int64(int64(len(doc.Data))),
	})
	if err != nil {
		return resume.NewError(resume.KindInternal, fmt.Sprintf("upload %q failed", key), err)
	}

	a.mu.Lock()
	a.lastKey = key
	a.mu.Unlock()
	return nil
}

// LastKey returns the key of the most recent upload.
func (a *Archive) LastKey() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastKey, a.lastKey != ""
}

// DownloadURL returns a presigned GET URL for key.
func (a *Archive) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if a == nil || a.presign == nil {
		return "", time.Time{}, resume.NewError(resume.KindNotImpl, "presign client not configured", nil)
	}
	if key == "" {
		return "", time.Time{}, resume.NewError(resume.KindValidation, "object key is required", nil)
	}
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.presignExpiration))
	if err != nil {
		return "", time.Time{}, resume.NewError(resume.KindInternal, "failed to presign download", err)
	}
	return req.URL, a.now().Add(a.presignExpiration), nil
}

func (a *Archive) objectKey(filename string) string {
	stamped := a.now().UTC().Format("20060102-150405") + "-" + filename
	if a.prefix == "" {
		return stamped
	}
	return path.Join(a.prefix, stamped)
}

func (a *Archive) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
