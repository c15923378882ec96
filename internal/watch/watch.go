// Package watch runs the background detection loop: every interval it
// scans the monitored module subtrees, diffs them against the durable
// seen sets, announces what appeared, and rewrites the snapshot.
package watch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/detect"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/notify"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/scan"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/state"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/tree"
)

// Config tunes the watch loop.
type Config struct {
	RootFolderID string
	Interval     time.Duration
	MaxDepth     int
	MinModule    int // lowest module number still monitored
}

// Watcher owns one detection schedule. Cycles run strictly one at a
// time: a cycle finishes its persist step before the next may start.
type Watcher struct {
	cfg        Config
	lister     remote.Lister
	scanner    *scan.Scanner
	dispatcher *notify.Dispatcher
	store      *state.Store
}

// New wires a watcher from its collaborators. The lister is the same
// cached one the interactive browser uses, so a cycle right after a
// browse serves mostly from cache.
func New(cfg Config, lister remote.Lister, scanner *scan.Scanner, dispatcher *notify.Dispatcher, store *state.Store) *Watcher {
	return &Watcher{
		cfg:        cfg,
		lister:     lister,
		scanner:    scanner,
		dispatcher: dispatcher,
		store:      store,
	}
}

// Run cycles until ctx is canceled, starting with an immediate cycle.
// Cancellation only stops the schedule: the in-flight cycle keeps an
// uncancelable context so it always reaches its persist step.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.cycle(context.WithoutCancel(ctx))
	for {
		select {
		case <-ctx.Done():
			logging.Info("watcher stopped")
			return
		case <-ticker.C:
			w.cycle(context.WithoutCancel(ctx))
		}
	}
}

// cycle is one full pass: list monitored subtrees, scan+diff+notify
// each, persist. Every failure is contained to its subtree (or to the
// persist step) and logged; the loop itself never dies.
func (w *Watcher) cycle(ctx context.Context) {
	start := time.Now()
	log := logging.L().With(zap.String("cycle_id", uuid.NewString()))

	subtrees, err := w.monitored(ctx)
	if err != nil {
		log.Error("cycle skipped: root listing failed", zap.Error(err))
		metrics.RecordWatchCycle(time.Since(start), false)
		return
	}

	ok := true
	totalNew := 0
	for _, st := range subtrees {
		n, err := w.checkSubtree(ctx, log, st)
		if err != nil {
			// Skip this subtree for the cycle; its seen set stays as it
			// was so nothing is lost or re-announced spuriously.
			log.Error("subtree check failed",
				zap.String("subtree", st.Label),
				zap.String("key", st.Key),
				zap.Error(err),
			)
			ok = false
			continue
		}
		totalNew += n
	}

	if err := w.store.Save(); err != nil {
		// The in-memory sets are already committed; the next cycle's
		// save rewrites the whole snapshot anyway.
		log.Error("state persist failed, retrying next cycle", zap.Error(err))
		ok = false
	}

	log.Info("watch cycle complete",
		zap.Int("subtrees", len(subtrees)),
		zap.Int("new_entries", totalNew),
		zap.Duration("took", time.Since(start)),
	)
	metrics.RecordWatchCycle(time.Since(start), ok)
}

// subtree is one monitored root-level module folder.
type subtree struct {
	Key   string // resolved folder id, stable across renames and re-pointed aliases
	Label string // canonical "M<n>" tag
}

// monitored lists the root and keeps the folders carrying a module
// number at or above the threshold. Aliased module folders are watched
// under their target id.
func (w *Watcher) monitored(ctx context.Context) ([]subtree, error) {
	listing, err := w.lister.List(ctx, w.cfg.RootFolderID)
	if err != nil {
		return nil, err
	}

	var out []subtree
	for _, e := range listing {
		if !tree.Classify(e).IsFolder() {
			continue
		}
		n, ok := tree.ModuleNumber(e.Name)
		if !ok || n < w.cfg.MinModule {
			continue
		}
		label, _ := tree.ModuleLabel(e.Name)
		id, _ := tree.Resolve(e)
		out = append(out, subtree{Key: id, Label: label})
	}
	return out, nil
}

// checkSubtree runs scan, diff, notify and the in-memory commit for
// one subtree, returning how many new entries it found.
func (w *Watcher) checkSubtree(ctx context.Context, log *zap.Logger, st subtree) (int, error) {
	result, err := w.scanner.Scan(ctx, st.Key, w.cfg.MaxDepth)
	if err != nil {
		return 0, err
	}

	fresh := detect.NewEntries(result, w.store.SeenIDs(st.Key))
	if len(fresh) > 0 {
		log.Info("new entries detected",
			zap.String("subtree", st.Label),
			zap.Int("count", len(fresh)),
		)
		metrics.RecordNewEntries(len(fresh))
		w.dispatcher.Dispatch(ctx, st.Label, fresh)
	}

	// Commit regardless of delivery outcomes: a failed send must not
	// re-announce the same entry every cycle from now on.
	w.store.Replace(st.Key, st.Label, detect.IDSet(result))
	return len(fresh), nil
}
