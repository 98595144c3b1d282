// Package client hosts the pieces a drawing peer runs locally: the event
// channel, the reconciler, and the snapshot history behind undo/redo.
package client

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/canvas"
)

// History is a linear undo/redo chain of whole-surface snapshots with a
// cursor. The cursor is -1 while empty and otherwise points at the snapshot
// matching the surface's current state. Pushing past a non-tip cursor
// discards everything after it; there is no branching.
type History struct {
	surface canvas.Surface
	snaps   []canvas.Snapshot
	cursor  int
	log     pslog.Logger
}

// NewHistory constructs an empty history over the given surface.
func NewHistory(surface canvas.Surface, logger pslog.Logger) *History {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &History{surface: surface, cursor: -1, log: logger}
}

// Push captures the surface as a new snapshot, truncating any redo branch.
func (h *History) Push() error {
	snap, err := h.surface.Export()
	if err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	h.snaps = append(h.snaps[:h.cursor+1], snap)
	h.cursor = len(h.snaps) - 1
	h.log.Trace("history push", "cursor", h.cursor, "len", len(h.snaps))
	return nil
}

// Undo steps the cursor back one snapshot and restores it. It reports false
// at the oldest snapshot or while empty.
func (h *History) Undo() bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	h.restore()
	return true
}

// Redo steps the cursor forward one snapshot and restores it. It reports
// false at the newest snapshot or while empty.
func (h *History) Redo() bool {
	if h.cursor < 0 || h.cursor >= len(h.snaps)-1 {
		return false
	}
	h.cursor++
	h.restore()
	return true
}

// Len returns the number of snapshots held.
func (h *History) Len() int {
	return len(h.snaps)
}

// Cursor returns the current cursor index, -1 while empty.
func (h *History) Cursor() int {
	return h.cursor
}

// restore renders the snapshot under the cursor. A snapshot that no longer
// decodes is logged and skipped; the cursor move stands so the chain keeps
// working.
func (h *History) restore() {
	if err := h.surface.Import(h.snaps[h.cursor]); err != nil {
		h.log.Warn("history restore failed", "cursor", h.cursor, "err", err)
	}
}
