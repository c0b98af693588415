package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"golang.org/x/xerrors"
)

type Storage interface {
	// Put stores data with the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
	// URL returns the storage URL Put would return for key
	URL(key string) string
}

type Config struct {
	// Backend is "file" or "s3".
	Backend string
	File    FileConfig
	S3      S3Config
}

func New(ctx context.Context, c Config) (Storage, error) {
	switch c.Backend {
	case "file", "":
		return NewFileStorage(ctx, c.File)
	case "s3":
		return NewS3Storage(ctx, c.S3)
	default:
		return nil, xerrors.Errorf("unknown storage backend: %s", c.Backend)
	}
}

// ArtifactKey names an artifact derived from a work/reference pair, e.g.
// Measure/highlight/<hash>/20240102150405.png.
func ArtifactKey(kind string, work string, reference string, ext string, now time.Time) string {
	h := sha256.New()
	h.Write([]byte(work + reference))
	hash := fmt.Sprintf("%x", h.Sum(nil))[:16]

	return fmt.Sprintf("Measure/%s/%s/%s.%s", kind, hash, now.Format("20060102150405"), ext)
}
