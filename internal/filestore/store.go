package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vinayk94/iso-assist/internal/config"
)

// Store holds the original source documents so answers can link back to a
// downloadable file. The query service only ever reads; Save is part of the
// contract for the ingestion tooling that shares this store and populates it.
type Store interface {
	Type() string
	Save(ctx context.Context, key string, r io.ReadSeeker, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

func New(cfg config.FileStoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "local":
		return newLocalStore(cfg)
	case "s3":
		return newS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
}
