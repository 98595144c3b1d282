package client

import (
	"context"
	"math"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/canvas"
	"pkt.systems/scrawl/schema"
)

// Emitter sends locally produced actions toward the relay. Delivery is
// at-most-once: a failed emission is logged and permanently lost to peers.
type Emitter interface {
	Submit(action schema.Action) error
	SubmitClear() error
}

type mode int

const (
	modeIdle mode = iota
	modeDrawing
	modeRemote
)

// Reconciler coordinates gesture capture, local rendering, emission, and
// remote application. Its mode tag is the sole feedback-loop guard: while a
// remote action is being applied, every emission site is suppressed, so a
// client can never rebroadcast an action it merely received. All operations
// serialize on one mutex, so a frontend and the event channel's Listen loop
// can share a Reconciler: an inbound action is fully applied before the next
// local input is processed, and vice versa.
type Reconciler struct {
	interp  *canvas.Interpreter
	history *History
	emitter Emitter
	log     pslog.Logger

	mu    sync.Mutex
	mode  mode
	tool  schema.Tool
	color string
	width float64
}

// NewReconciler wires an interpreter, a snapshot history, and an emitter.
// A nil emitter renders locally without publishing (offline board).
func NewReconciler(interp *canvas.Interpreter, history *History, emitter Emitter, logger pslog.Logger) *Reconciler {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Reconciler{interp: interp, history: history, emitter: emitter, log: logger}
}

// BeginStroke opens a pen or eraser gesture at a point.
func (r *Reconciler) BeginStroke(x, y float64, color string, width float64, tool schema.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeRemote {
		return schema.ErrApplyingRemote
	}
	if r.mode == modeDrawing {
		return schema.ErrGestureInProgress
	}
	if !tool.IsStrokeTool() {
		tool = schema.ToolPen
	}
	r.tool, r.color, r.width = tool, color, width
	r.mode = modeDrawing
	r.applyAndEmit(schema.Action{
		Kind: schema.ActionStart, X: x, Y: y,
		Color: color, LineWidth: width, Tool: tool,
	})
	return nil
}

// ExtendStroke extends the open gesture to a point and strokes it
// immediately.
func (r *Reconciler) ExtendStroke(x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeDrawing {
		return schema.ErrNoGesture
	}
	r.applyAndEmit(schema.Action{
		Kind: schema.ActionDraw, X: x, Y: y,
		Color: r.color, LineWidth: r.width, Tool: r.tool,
	})
	return nil
}

// EndStroke closes the open gesture and records one snapshot.
func (r *Reconciler) EndStroke() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeDrawing {
		return schema.ErrNoGesture
	}
	r.applyAndEmit(schema.Action{Kind: schema.ActionStop, Tool: r.tool})
	r.mode = modeIdle
	r.push()
	return nil
}

// DrawRect completes a rectangle gesture spanning press and release points.
// Dimensions may be signed; the interpreter normalizes them.
func (r *Reconciler) DrawRect(x, y, width, height float64, color string, lineWidth float64) error {
	return r.instant(schema.Action{
		Kind: schema.ActionRect, X: x, Y: y, Width: width, Height: height,
		Color: color, LineWidth: lineWidth,
	})
}

// DrawCircle completes a circle gesture: the center is the press point and
// the radius is the Euclidean distance to the release point.
func (r *Reconciler) DrawCircle(pressX, pressY, releaseX, releaseY float64, color string, lineWidth float64) error {
	return r.instant(schema.Action{
		Kind: schema.ActionCircle, X: pressX, Y: pressY,
		Radius: math.Hypot(releaseX-pressX, releaseY-pressY),
		Color:  color, LineWidth: lineWidth,
	})
}

// WriteText renders a string at a point as an instantaneous gesture.
func (r *Reconciler) WriteText(x, y float64, text, font, color string) error {
	return r.instant(schema.Action{
		Kind: schema.ActionText, X: x, Y: y,
		Text: text, Font: font, Color: color,
	})
}

// Clear blanks the board as an instantaneous gesture.
func (r *Reconciler) Clear() error {
	return r.instant(schema.Action{Kind: schema.ActionClear})
}

// Undo restores the previous snapshot. It never re-submits actions and is a
// no-op at the oldest snapshot or outside Idle.
func (r *Reconciler) Undo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeIdle {
		return false
	}
	return r.history.Undo()
}

// Redo restores the next snapshot, never re-submitting the original action.
func (r *Reconciler) Redo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != modeIdle {
		return false
	}
	return r.history.Redo()
}

// HandleAction applies one relayed action. From Idle it records one
// snapshot; during a local gesture it only renders, accepting the
// inconsistency window a remote clear opens until the gesture's stop push.
func (r *Reconciler) HandleAction(action schema.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeDrawing {
		r.interp.Apply(action)
		return
	}
	r.mode = modeRemote
	r.interp.Apply(action)
	r.mode = modeIdle
	r.push()
}

// HandleReplay blanks the surface and applies the whole replay in order.
// From Idle it records exactly one snapshot for the sequence. During a local
// gesture it only renders, leaving the gesture open to continue on the
// replayed surface and resolve with its own stop push.
func (r *Reconciler) HandleReplay(actions []schema.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeDrawing {
		r.interp.Surface().Clear()
		for _, action := range actions {
			r.interp.Apply(action)
		}
		r.log.Debug("replay applied mid-gesture", "actions", len(actions))
		return
	}
	r.mode = modeRemote
	r.interp.Surface().Clear()
	for _, action := range actions {
		r.interp.Apply(action)
	}
	r.mode = modeIdle
	r.push()
	r.log.Debug("replay applied", "actions", len(actions))
}

func (r *Reconciler) instant(action schema.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeRemote {
		return schema.ErrApplyingRemote
	}
	if r.mode == modeDrawing {
		return schema.ErrGestureInProgress
	}
	r.applyAndEmit(action)
	r.push()
	return nil
}

func (r *Reconciler) applyAndEmit(action schema.Action) {
	r.interp.Apply(action)
	r.emit(action)
}

// emit publishes a local action. The mode check here, at the single
// emission site, is what prevents feedback loops in topologies where a
// sender could observe its own relayed message.
func (r *Reconciler) emit(action schema.Action) {
	if r.mode == modeRemote || r.emitter == nil {
		return
	}
	var err error
	if action.Kind == schema.ActionClear {
		err = r.emitter.SubmitClear()
	} else {
		err = r.emitter.Submit(action)
	}
	if err != nil {
		r.log.Warn("action emission failed, lost to peers", "kind", action.Kind, "err", err)
	}
}

func (r *Reconciler) push() {
	if err := r.history.Push(); err != nil {
		r.log.Warn("snapshot push failed", "err", err)
	}
}
