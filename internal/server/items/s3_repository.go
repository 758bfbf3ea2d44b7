package items

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gallerykeeper/internal/logging"
	sc "gallerykeeper/internal/server/config"
	"gallerykeeper/internal/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	recordExt = ".json"
	keepFile  = ".keep"

	// metadataChangeKey carries the human-readable change description on
	// every write, the audit trail the underlying store keeps per object.
	metadataChangeKey = "change-description"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectAPI is the slice of the S3 client the repository uses. *s3.Client
// satisfies it; tests substitute a fake.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Repository persists one JSON object per item under a fixed collection
// prefix in an S3-compatible store. Object ETags are the revision tags: a
// delete is conditioned on the ETag fetched immediately before it, so a
// concurrent external modification surfaces as a store-level conflict
// instead of a blind overwrite.
type S3Repository struct {
	client objectAPI
	bucket string
	prefix string
	logger logging.Logger
}

// NewS3Repository builds the repository from config. Missing credentials or
// bucket name do not fail construction: the repository comes up in an
// unconfigured state where every operation reports
// shared.ErrorStoreNotConfigured, so the server can still serve login and
// health requests.
func NewS3Repository(cfg *sc.Config, logger logging.Logger) (*S3Repository, error) {

	r := &S3Repository{
		bucket: cfg.S3Bucket,
		prefix: normalizePrefix(cfg.S3Prefix),
		logger: logger.With("module", "s3_repository"),
	}

	if cfg.S3RootUser == "" || cfg.S3RootPassword == "" || cfg.S3Bucket == "" {
		return r, nil
	}

	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	r.client = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return r, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return prefix
}

func (r *S3Repository) itemKey(id string) string {
	return r.prefix + id + recordExt
}

// List fetches and decodes every item record under the collection prefix,
// newest first. A record that fails to decode is logged and skipped. A
// missing bucket means "no items yet" and yields an empty list.
func (r *S3Repository) List(ctx context.Context) ([]Item, error) {

	if r.client == nil {
		return nil, shared.ErrorStoreNotConfigured
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	}

	items := []Item{}

	paginator := s3.NewListObjectsV2Paginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var noBucket *types.NoSuchBucket
			if errors.As(err, &noBucket) {
				return items, nil
			}
			return nil, fmt.Errorf("list %s: %w", r.prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, recordExt) {
				continue
			}

			data, err := r.fetchObject(ctx, key)
			if err != nil {
				if errors.Is(err, shared.ErrorNotFound) {
					// deleted between listing and fetch
					continue
				}
				return nil, err
			}

			var item Item
			if err := json.Unmarshal(data, &item); err != nil {
				r.logger.Warn(ctx, "Skipping undecodable item record", "key", key, "error", err.Error())
				continue
			}
			items = append(items, item)
		}
	}

	sortNewestFirst(items)
	return items, nil
}

func (r *S3Repository) fetchObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Create writes the canonical record for req as a new object. The collection
// prefix is bootstrapped with a placeholder object on first use; bootstrap
// failures are logged and the item write is still attempted.
func (r *S3Repository) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {

	if r.client == nil {
		return nil, shared.ErrorStoreNotConfigured
	}

	item := NewItem(req)

	body, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode item %s: %w", item.ID, err)
	}

	r.ensurePrefix(ctx)

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.itemKey(item.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{metadataChangeKey: "Add gallery item: " + item.Title},
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", r.itemKey(item.ID), err)
	}

	return item, nil
}

// ensurePrefix writes a placeholder object when the collection prefix holds
// nothing yet. Best effort: two concurrent creates may race here, which is
// harmless, and any failure leaves the caller to attempt the item write.
func (r *S3Repository) ensurePrefix(ctx context.Context) {

	out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.bucket),
		Prefix:  aws.String(r.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err == nil && aws.ToInt32(out.KeyCount) > 0 {
		return
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(r.bucket),
		Key:      aws.String(r.prefix + keepFile),
		Body:     bytes.NewReader(nil),
		Metadata: map[string]string{metadataChangeKey: "Initialize gallery directory"},
	})
	if err != nil {
		r.logger.Warn(ctx, "Gallery directory bootstrap failed", "error", err.Error())
	}
}

// Delete removes the record for id. The object's current ETag is fetched
// immediately before the delete and passed as a precondition; reusing a
// cached tag would allow acting on a revision the caller never saw.
func (r *S3Repository) Delete(ctx context.Context, id string) error {

	if r.client == nil {
		return shared.ErrorStoreNotConfigured
	}

	key := r.itemKey(id)

	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return shared.ErrorNotFound
		}
		return fmt.Errorf("head %s: %w", key, err)
	}

	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket:  aws.String(r.bucket),
		Key:     aws.String(key),
		IfMatch: head.ETag,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return shared.ErrorNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

// Ping probes bucket reachability for the health endpoint and the startup
// access check.
func (r *S3Repository) Ping(ctx context.Context) error {
	if r.client == nil {
		return shared.ErrorStoreNotConfigured
	}
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", r.bucket, err)
	}
	return nil
}
