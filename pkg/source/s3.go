package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/ssr/pkg/store"
)

// Object formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

const msgpackContentType = "application/msgpack"

// GetObjectAPI is the part of the S3 client the source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads one object per item, keyed {Prefix}{id}.{Format}.
type S3 struct {
	Client GetObjectAPI
	Bucket string
	Prefix string

	// Format selects the object extension, FormatJSON (default) or
	// FormatMsgpack. Decoding follows the object's content type, falling
	// back to the key extension.
	Format string
}

// S3Config configures NewS3Client.
type S3Config struct {
	Region          string
	Endpoint        string // custom endpoint, e.g. a MinIO server
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
}

// NewS3Client builds an S3 client from static settings. Credentials are
// cached; an empty access key leaves the client anonymous.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
			Source:          "ssr.S3Config",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return creds, nil
			}))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}

func (s *S3) key(id string) string {
	format := s.Format
	if format == "" {
		format = FormatJSON
	}
	return s.Prefix + id + "." + format
}

// FetchItem implements store.ItemFetcher.
func (s *S3) FetchItem(ctx context.Context, id string) (store.Item, error) {
	key := s.key(id)
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("get object s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object s3://%s/%s: %w", s.Bucket, key, err)
	}

	item, err := decodeItem(data, aws.ToString(out.ContentType), key)
	if err != nil {
		return nil, fmt.Errorf("decode object s3://%s/%s: %w", s.Bucket, key, err)
	}
	if item == nil {
		return nil, notFound(id)
	}
	return item, nil
}

func decodeItem(data []byte, contentType, key string) (store.Item, error) {
	var item store.Item
	if isMsgpack(contentType, key) {
		if err := msgpack.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		return item, nil
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// isMsgpack decides the codec from the content type. Generic or missing
// content types fall back to the key extension.
func isMsgpack(contentType, key string) bool {
	switch {
	case strings.HasPrefix(contentType, msgpackContentType):
		return true
	case contentType == "", contentType == "binary/octet-stream", contentType == "application/octet-stream":
		return strings.HasSuffix(key, "."+FormatMsgpack)
	default:
		return false
	}
}

func isMissingObject(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
