package canvas

import (
	"pkt.systems/scrawl/schema"
)

type pathState int

const (
	noPath pathState = iota
	openPath
)

// Interpreter renders actions onto a surface. It owns the open-path state
// across start/draw/stop and the current stroke settings that missing action
// fields fall back to. Apply never fails: malformed actions degrade with
// defaults.
type Interpreter struct {
	surface Surface
	state   pathState
	curX    float64
	curY    float64
	erasing bool
}

// NewInterpreter constructs an interpreter over the given surface.
func NewInterpreter(surface Surface) *Interpreter {
	return &Interpreter{surface: surface}
}

// Surface returns the surface the interpreter renders onto.
func (in *Interpreter) Surface() Surface {
	return in.surface
}

// Apply renders one action. It touches only the surface, never any history.
func (in *Interpreter) Apply(a schema.Action) {
	switch a.Kind {
	case schema.ActionStart:
		in.setStyle(a)
		if a.Tool == schema.ToolEraser && !in.erasing {
			in.surface.SetComposite(CompositeErase)
			in.erasing = true
		}
		in.curX, in.curY = a.X, a.Y
		in.state = openPath
	case schema.ActionDraw:
		in.setStyle(a)
		// A draw whose start was evicted from the history log opens a
		// fresh path at its own point.
		if in.state == noPath {
			in.curX, in.curY = a.X, a.Y
			in.state = openPath
			if a.Tool == schema.ToolEraser && !in.erasing {
				in.surface.SetComposite(CompositeErase)
				in.erasing = true
			}
		}
		in.surface.StrokeLine(in.curX, in.curY, a.X, a.Y)
		in.curX, in.curY = a.X, a.Y
	case schema.ActionStop:
		in.state = noPath
		if in.erasing {
			in.surface.SetComposite(CompositeNormal)
			in.erasing = false
		}
	case schema.ActionRect:
		in.setStyle(a)
		in.surface.StrokeRect(a.X, a.Y, a.Width, a.Height)
	case schema.ActionCircle:
		in.setStyle(a)
		in.surface.StrokeCircle(a.X, a.Y, a.Radius)
	case schema.ActionText:
		in.setStyle(a)
		in.surface.FillText(a.Text, a.X, a.Y)
	case schema.ActionClear:
		// Clearing does not reset an open path: a local gesture racing a
		// remote clear continues on the blanked surface.
		in.surface.Clear()
	default:
		// Unknown kinds are relayed unchanged by the server; render nothing.
	}
}

func (in *Interpreter) setStyle(a schema.Action) {
	if c, ok := ParseColor(a.Color); ok {
		in.surface.SetStroke(c, a.LineWidth)
		return
	}
	in.surface.SetStroke(nil, a.LineWidth)
}
