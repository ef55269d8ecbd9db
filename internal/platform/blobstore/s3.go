package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds construction parameters for the S3 backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; if set enables a custom endpoint (e.g. MinIO)
	KeyPrefix string // optional prefix for all object keys
	PathStyle bool
}

// S3BlobStore implements BlobStore against an S3-compatible backend (AWS S3
// or MinIO). Attachment metadata travels as S3 object user metadata, so the
// bucket alone is the source of truth.
type S3BlobStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3BlobStore creates an S3 attachment store. Credentials come from the
// default AWS credentials chain.
func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3BlobStore{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func (s *S3BlobStore) key(id string) string {
	return s.prefix + id
}

// Upload stores the attachment as a single object keyed by its generated ID.
func (s *S3BlobStore) Upload(ctx context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	if meta.FileName == "" {
		return nil, ErrMissingFileName
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()
	if meta.Category == "" || !AllowedCategories[strings.ToLower(meta.Category)] {
		meta.Category = "other"
	}

	key := s.key(meta.ID)
	input := &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(meta.ContentType),
		Metadata:    encodeMeta(meta),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	out := meta
	return &out, nil
}

// Download returns the attachment content and metadata.
func (s *S3BlobStore) Download(ctx context.Context, id string) (io.ReadCloser, *BlobMetadata, error) {
	key := s.key(id)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, nil, ErrBlobNotFound
	}
	meta := decodeMeta(id, out.Metadata)
	if out.ContentType != nil {
		meta.ContentType = *out.ContentType
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	return out.Body, meta, nil
}

// Delete removes the attachment object.
func (s *S3BlobStore) Delete(ctx context.Context, id string) error {
	key := s.key(id)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return ErrBlobNotFound
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// GetMetadata returns attachment metadata via a HEAD request.
func (s *S3BlobStore) GetMetadata(ctx context.Context, id string) (*BlobMetadata, error) {
	key := s.key(id)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, ErrBlobNotFound
	}
	meta := decodeMeta(id, out.Metadata)
	if out.ContentType != nil {
		meta.ContentType = *out.ContentType
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	return meta, nil
}

// ListByOwner walks the bucket prefix and filters objects by owner metadata.
// Attachment volumes per home are modest, so a list-and-head scan is fine.
func (s *S3BlobStore) ListByOwner(ctx context.Context, ownerType, ownerID, category string, limit, offset int) ([]*BlobMetadata, int, error) {
	var matched []*BlobMetadata

	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			id := strings.TrimPrefix(*obj.Key, s.prefix)
			meta, err := s.GetMetadata(ctx, id)
			if err != nil {
				continue
			}
			if meta.OwnerType != ownerType || meta.OwnerID != ownerID {
				continue
			}
			if category != "" && meta.Category != category {
				continue
			}
			matched = append(matched, meta)
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if limit <= 0 {
		limit = 20
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func encodeMeta(m BlobMetadata) map[string]string {
	return map[string]string{
		"file-name":  m.FileName,
		"owner-type": m.OwnerType,
		"owner-id":   m.OwnerID,
		"category":   m.Category,
		"hash":       m.Hash,
		"created-at": m.CreatedAt.Format(time.RFC3339),
		"created-by": m.CreatedBy,
	}
}

func decodeMeta(id string, raw map[string]string) *BlobMetadata {
	m := &BlobMetadata{ID: id}
	if raw == nil {
		return m
	}
	m.FileName = raw["file-name"]
	m.OwnerType = raw["owner-type"]
	m.OwnerID = raw["owner-id"]
	m.Category = raw["category"]
	m.Hash = raw["hash"]
	m.CreatedBy = raw["created-by"]
	if ts, err := time.Parse(time.RFC3339, raw["created-at"]); err == nil {
		m.CreatedAt = ts
	}
	return m
}
