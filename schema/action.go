package schema

// ActionKind discriminates the drawing operation carried by an Action.
type ActionKind string

const (
	// ActionStart opens a stroke path at a point.
	ActionStart ActionKind = "start"
	// ActionDraw extends the open stroke path to a point.
	ActionDraw ActionKind = "draw"
	// ActionStop closes the open stroke path.
	ActionStop ActionKind = "stop"
	// ActionRect strokes a rectangle.
	ActionRect ActionKind = "rect"
	// ActionCircle strokes a circle.
	ActionCircle ActionKind = "circle"
	// ActionText renders a string.
	ActionText ActionKind = "text"
	// ActionClear blanks the entire surface.
	ActionClear ActionKind = "clear"
)

// Tool identifies the drawing tool behind a stroke gesture.
type Tool string

const (
	// ToolPen draws with the current stroke color.
	ToolPen Tool = "pen"
	// ToolEraser removes pixels instead of painting them.
	ToolEraser Tool = "eraser"
)

// Action is one drawing operation submitted by a client and relayed to peers.
// Kind selects the variant; the remaining fields are populated per kind and
// default to their zero values when absent. The relay stores and forwards
// actions unchanged, malformed or not, so consumers must tolerate missing
// fields.
type Action struct {
	Kind      ActionKind `json:"kind"`
	X         float64    `json:"x,omitempty"`
	Y         float64    `json:"y,omitempty"`
	Width     float64    `json:"width,omitempty"`
	Height    float64    `json:"height,omitempty"`
	Radius    float64    `json:"radius,omitempty"`
	Color     string     `json:"color,omitempty"`
	LineWidth float64    `json:"lineWidth,omitempty"`
	Tool      Tool       `json:"tool,omitempty"`
	Text      string     `json:"text,omitempty"`
	Font      string     `json:"font,omitempty"`
}

// IsStrokeTool reports whether the tool participates in start/draw/stop
// gestures.
func (t Tool) IsStrokeTool() bool {
	return t == ToolPen || t == ToolEraser
}
