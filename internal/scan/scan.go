// Package scan walks a remote subtree and flattens it into the entry
// list the change detector diffs.
package scan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/tree"
)

// Scanner performs depth-bounded traversals through the shared lister,
// so the watcher and the browser reuse each other's cached listings.
type Scanner struct {
	lister remote.Lister
}

// New creates a scanner over the given lister.
func New(lister remote.Lister) *Scanner {
	return &Scanner{lister: lister}
}

// Scan lists folderID and descends depth-first into every navigable
// folder, following alias targets, down to maxDepth levels below the
// start. maxDepth 0 lists only the direct children. The depth bound is
// the sole cycle guard: an alias pointing back at an ancestor costs
// duplicate listings up to the bound, never an unbounded walk.
//
// A listing failure aborts the whole scan; a partial result must never
// reach the detector, or entries the failed branch contains would be
// treated as deleted and later re-announced.
func (s *Scanner) Scan(ctx context.Context, folderID string, maxDepth int) ([]models.Entry, error) {
	start := time.Now()

	var out []models.Entry
	err := s.walk(ctx, folderID, 0, maxDepth, &out)
	metrics.RecordScan(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	logging.Debug("subtree scanned",
		zap.String("folder_id", folderID),
		zap.Int("entries", len(out)),
		zap.Int("max_depth", maxDepth),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

func (s *Scanner) walk(ctx context.Context, folderID string, depth, maxDepth int, out *[]models.Entry) error {
	listing, err := s.lister.List(ctx, folderID)
	if err != nil {
		return fmt.Errorf("scan folder %s at depth %d: %w", folderID, depth, err)
	}

	for _, e := range listing {
		*out = append(*out, e)

		if !tree.Classify(e).IsFolder() {
			continue
		}
		if depth+1 > maxDepth {
			continue
		}
		id, _ := tree.Resolve(e)
		if err := s.walk(ctx, id, depth+1, maxDepth, out); err != nil {
			return err
		}
	}
	return nil
}
