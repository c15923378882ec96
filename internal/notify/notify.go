// Package notify formats new-entry announcements and dispatches them
// to the broadcast channel, newest first and capped per cycle.
package notify

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/tree"
)

// Sender delivers one formatted message to the broadcast channel. The
// transport owns its own retry behavior; an error here means the
// message is gone for good.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher announces new entries for monitored subtrees.
type Dispatcher struct {
	sender      Sender
	maxPerCycle int // 0 means uncapped
}

// NewDispatcher creates a dispatcher sending through the given
// transport, announcing at most maxPerCycle entries per subtree per
// cycle.
func NewDispatcher(sender Sender, maxPerCycle int) *Dispatcher {
	return &Dispatcher{sender: sender, maxPerCycle: maxPerCycle}
}

// Dispatch sends one message per new entry, most recently modified
// first, truncated to the per-cycle cap. A failed send is logged and
// skipped; the rest of the batch still goes out, and the caller
// commits its seen set regardless. Returns the number delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, label string, newEntries []models.Entry) int {
	if len(newEntries) == 0 {
		return 0
	}

	ordered := orderNewestFirst(newEntries)
	if d.maxPerCycle > 0 && len(ordered) > d.maxPerCycle {
		dropped := len(ordered) - d.maxPerCycle
		metrics.RecordNotificationsDropped(dropped)
		logging.Warn("notification cap applied",
			zap.String("subtree", label),
			zap.Int("new_entries", len(ordered)),
			zap.Int("dropped", dropped),
		)
		ordered = ordered[:d.maxPerCycle]
	}

	sent := 0
	for _, e := range ordered {
		if err := d.sender.Send(ctx, Message(label, e)); err != nil {
			metrics.RecordNotification(false)
			logging.Error("notification send failed",
				zap.String("subtree", label),
				zap.String("entry_id", e.ID),
				zap.String("entry_name", e.Name),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordNotification(true)
		sent++
	}

	logging.Info("notifications dispatched",
		zap.String("subtree", label),
		zap.Int("sent", sent),
		zap.Int("of", len(ordered)),
	)
	return sent
}

// orderNewestFirst sorts a copy of the batch by modification time
// descending. Entries without a timestamp keep their scan order at the
// tail.
func orderNewestFirst(entries []models.Entry) []models.Entry {
	ordered := append([]models.Entry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i].ModifiedTime, ordered[j].ModifiedTime
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() && tj.IsZero()
		}
		return ti.After(tj)
	})
	return ordered
}

// Message formats one announcement: the subtree tag and the entry on
// the first line, the open link on the second when there is one.
func Message(label string, e models.Entry) string {
	var b strings.Builder
	b.WriteString("🔔 ")
	b.WriteString(label)
	b.WriteString(" — ")
	b.WriteString(tree.EntryIcon(e))
	b.WriteString(" ")
	b.WriteString(e.Name)
	if link := entryLink(e); link != "" {
		b.WriteString("\n")
		b.WriteString(link)
	}
	return b.String()
}

// entryLink picks the open URL for an announcement. Files always get
// one (synthesized if the listing omitted it); folders only when the
// backend provided a view link.
func entryLink(e models.Entry) string {
	if tree.Classify(e).IsFolder() {
		return e.WebViewLink
	}
	return tree.FileLink(e)
}
