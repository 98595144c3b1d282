package client

import (
	"errors"
	"image/color"
	"testing"

	"pkt.systems/scrawl/canvas"
	"pkt.systems/scrawl/schema"
)

func TestHistoryStartsEmpty(t *testing.T) {
	h := NewHistory(canvas.NewImage(8, 8), nil)
	if h.Cursor() != -1 || h.Len() != 0 {
		t.Fatalf("expected empty history, cursor %d len %d", h.Cursor(), h.Len())
	}
	if h.Undo() || h.Redo() {
		t.Fatalf("undo/redo on empty history must be no-ops")
	}
}

func TestHistoryUndoRedoRestoresPixels(t *testing.T) {
	s := canvas.NewImage(16, 16)
	h := NewHistory(s, nil)

	if err := h.Push(); err != nil { // blank state
		t.Fatalf("push: %v", err)
	}
	s.SetStroke(color.RGBA{R: 0xff, A: 0xff}, 3)
	s.StrokeLine(0, 8, 15, 8)
	if err := h.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}

	if !h.Undo() {
		t.Fatalf("undo failed")
	}
	if s.At(8, 8).A != 0 {
		t.Fatalf("undo did not restore blank surface")
	}
	if !h.Redo() {
		t.Fatalf("redo failed")
	}
	if s.At(8, 8).A == 0 {
		t.Fatalf("redo did not restore the stroke")
	}
}

func TestHistoryBoundsAreNoOps(t *testing.T) {
	s := canvas.NewImage(8, 8)
	h := NewHistory(s, nil)
	_ = h.Push()
	_ = h.Push()
	if h.Undo() != true {
		t.Fatalf("expected one undo step")
	}
	if h.Undo() {
		t.Fatalf("undo at cursor 0 must be a no-op")
	}
	if h.Redo() != true {
		t.Fatalf("expected one redo step")
	}
	if h.Redo() {
		t.Fatalf("redo at the last index must be a no-op")
	}
}

func TestHistoryPushTruncatesRedoBranch(t *testing.T) {
	s := canvas.NewImage(8, 8)
	h := NewHistory(s, nil)
	_ = h.Push()
	_ = h.Push()
	_ = h.Push()
	h.Undo()
	h.Undo()
	if h.Cursor() != 0 {
		t.Fatalf("expected cursor 0, got %d", h.Cursor())
	}
	_ = h.Push()
	if h.Len() != 2 || h.Cursor() != 1 {
		t.Fatalf("push past non-tip cursor should truncate: len %d cursor %d", h.Len(), h.Cursor())
	}
	if h.Redo() {
		t.Fatalf("redo after truncating push must be a no-op")
	}
}

// flakySurface fails restores to exercise SnapshotRestoreFailure handling.
type flakySurface struct {
	canvas.Surface
	importErr error
}

func (f *flakySurface) Import(canvas.Snapshot) error { return f.importErr }

func TestHistoryRestoreFailureKeepsChainWorking(t *testing.T) {
	inner := canvas.NewImage(8, 8)
	f := &flakySurface{Surface: inner, importErr: schema.ErrBadSnapshot}
	h := NewHistory(f, nil)
	_ = h.Push()
	_ = h.Push()
	_ = h.Push()
	if !h.Undo() {
		t.Fatalf("undo should still move the cursor")
	}
	if h.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", h.Cursor())
	}
	f.importErr = nil
	if !h.Undo() || h.Cursor() != 0 {
		t.Fatalf("chain broken after failed restore")
	}
	if !h.Redo() || !h.Redo() {
		t.Fatalf("redo chain broken after failed restore")
	}
	if errors.Is(f.importErr, schema.ErrBadSnapshot) {
		t.Fatalf("test wiring: import error should have been cleared")
	}
}
