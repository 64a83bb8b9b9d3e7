package config

import (
	"encoding/json"
	"os"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/source"
	"github.com/vango-dev/ssr/pkg/store"
)

// NewFetcher builds the configured item source. The memory source serves
// the fixture file, or fallback when no file is configured. S3 credentials
// come from the standard AWS_* environment variables.
func (c SourceConfig) NewFetcher(fallback map[string]store.Item) (store.ItemFetcher, error) {
	switch c.Kind {
	case SourceMemory:
		if c.Fixtures == "" {
			return source.NewMemory(fallback), nil
		}
		items, err := readFixtures(c.Fixtures)
		if err != nil {
			return nil, err
		}
		return source.NewMemory(items), nil

	case SourceHTTP:
		return source.NewHTTP(c.BaseURL, c.Timeout), nil

	case SourceS3:
		client := source.NewS3Client(source.S3Config{
			Region:          c.Region,
			Endpoint:        c.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			UsePathStyle:    c.PathStyle,
		})
		return &source.S3{Client: client, Bucket: c.Bucket, Prefix: c.Prefix, Format: c.Format}, nil
	}
	return nil, ssrerrors.New("E103").WithField("source.kind")
}

func readFixtures(path string) (map[string]store.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ssrerrors.New("E105").WithField(path).Wrap(err)
	}
	var items map[string]store.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, ssrerrors.New("E105").WithField(path).Wrap(err)
	}
	return items, nil
}
