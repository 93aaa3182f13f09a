// Package assets stores uploaded model files by name.
//
// Two backends are available: Disk (a local directory) and S3 (any
// S3-compatible object store). Names are flat; path separators are rejected.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/SurakshaKumari/gt-3D-backend/internal/config"
)

var (
	// ErrNotFound is returned when no asset has the requested name.
	ErrNotFound = errors.New("assets: not found")

	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("assets: file too large")

	// ErrInvalidName is returned for empty names or names with path elements.
	ErrInvalidName = errors.New("assets: invalid name")
)

// Store persists binary model files.
type Store interface {
	// Put writes r under name, replacing any existing asset.
	Put(ctx context.Context, name string, r io.Reader) error

	// Open returns a reader for the named asset. The caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named asset. Deleting a missing asset returns ErrNotFound.
	Delete(ctx context.Context, name string) error
}

// ModelName returns the storage name for a model uploaded to projectID:
// model-<projectID>-<unixMillis>-<random>.stl
func ModelName(projectID string, now time.Time) string {
	return fmt.Sprintf("model-%s-%d-%d.stl", projectID, now.UnixMilli(), rand.Intn(1e9))
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// limitReader fails with ErrTooLarge once more than max bytes are read.
// A max of zero disables the limit.
type limitReader struct {
	r   io.Reader
	n   int64
	max int64
}

func newLimitReader(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitReader{r: r, max: max}
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, ErrTooLarge
	}
	return n, err
}

// New opens the backend selected by cfg.Driver.
func New(cfg config.AssetsConfig) (Store, error) {
	switch cfg.Driver {
	case config.AssetsS3:
		return NewS3(cfg.S3, cfg.MaxUploadBytes), nil
	case config.AssetsDisk, "":
		return NewDisk(cfg.Dir, cfg.MaxUploadBytes)
	default:
		return nil, fmt.Errorf("unknown assets driver %q", cfg.Driver)
	}
}
