// Package remote defines the folder listing interface and provides
// backend selection, failure normalization and listing-cache wiring.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/config"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote/drive"
	s3backend "github.com/DarmsTdiuM27/med-drive-bot/internal/remote/s3"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/cache"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// Lister lists the direct children of a remote folder.
type Lister interface {
	List(ctx context.Context, folderID string) ([]models.Entry, error)
}

// UnavailableError reports that the remote backend could not serve a
// listing. Interactive callers surface it for the current render only;
// the watcher skips the affected subtree until the next cycle.
type UnavailableError struct {
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s listing unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err marks a failed remote listing.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// New builds the configured backend, wrapped in instrumentation and
// the TTL listing cache. Every consumer shares the returned Lister so
// the browser and the watcher see the same cache.
func New(ctx context.Context, cfg *config.Config) (Lister, error) {
	var (
		backend Lister
		err     error
	)
	switch cfg.RemoteBackend {
	case config.BackendDrive:
		backend, err = drive.New(ctx, cfg.GoogleAPIKey)
	case config.BackendS3:
		backend, err = s3backend.New(ctx, s3backend.Config{
			Endpoint:  s3Endpoint(cfg),
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			LinkTTL:   cfg.S3LinkTTL,
		})
	default:
		return nil, fmt.Errorf("unknown remote backend: %s", cfg.RemoteBackend)
	}
	if err != nil {
		return nil, err
	}
	return NewCached(Instrument(backend, cfg.RemoteBackend), cache.New(cfg.CacheTTL)), nil
}

func s3Endpoint(cfg *config.Config) string {
	if strings.Contains(cfg.S3Endpoint, "://") {
		return cfg.S3Endpoint
	}
	scheme := "http://"
	if cfg.S3UseSSL {
		scheme = "https://"
	}
	return scheme + cfg.S3Endpoint
}

// Instrument wraps a backend so every failure surfaces as an
// UnavailableError and every request lands in the metrics. Context
// cancellation passes through unwrapped; it is the caller going away,
// not the backend failing.
func Instrument(inner Lister, backend string) Lister {
	return &instrumented{inner: inner, backend: backend}
}

type instrumented struct {
	inner   Lister
	backend string
}

func (l *instrumented) List(ctx context.Context, folderID string) ([]models.Entry, error) {
	start := time.Now()
	items, err := l.inner.List(ctx, folderID)
	metrics.RecordRemoteRequest(l.backend, time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &UnavailableError{Backend: l.backend, Err: err}
	}
	return items, nil
}
