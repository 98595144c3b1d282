package main

import (
	"testing"

	"pkt.systems/scrawl/canvas"
	"pkt.systems/scrawl/client"
	"pkt.systems/scrawl/schema"
)

func newTestReconciler() (*client.Reconciler, *canvas.Image) {
	surface := canvas.NewImage(100, 100)
	interp := canvas.NewInterpreter(surface)
	history := client.NewHistory(surface, nil)
	return client.NewReconciler(interp, history, nil, nil), surface
}

func TestParseScript(t *testing.T) {
	data := []byte(`
- op: stroke
  points: [[10, 10], [40, 40]]
  color: red
  line_width: 3
  tool: pen
- op: rect
  x: 5
  y: 5
  width: 20
  height: 10
- op: text
  x: 10
  y: 50
  text: hello
- op: clear
- op: undo
`)
	steps, err := parseScript(data)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(steps) != 5 {
		t.Fatalf("steps = %d, want 5", len(steps))
	}
	if steps[0].Op != "stroke" || len(steps[0].Points) != 2 || steps[0].Color != "red" {
		t.Fatalf("bad stroke step: %+v", steps[0])
	}
	if steps[1].Width != 20 || steps[1].Height != 10 {
		t.Fatalf("bad rect step: %+v", steps[1])
	}
}

func TestParseScriptRejectsUnknownOp(t *testing.T) {
	if _, err := parseScript([]byte("- op: scribble\n")); err == nil {
		t.Fatalf("expected error for unknown op")
	}
}

func TestParseScriptRejectsEmptyStroke(t *testing.T) {
	if _, err := parseScript([]byte("- op: stroke\n")); err == nil {
		t.Fatalf("expected error for stroke without points")
	}
}

func TestRunScriptPaintsSurface(t *testing.T) {
	rec, surface := newTestReconciler()
	steps := []scriptStep{
		{Op: "stroke", Points: [][2]float64{{10, 50}, {90, 50}}, Color: "black", LineWidth: 3, Tool: string(schema.ToolPen)},
	}
	if err := runScript(rec, steps); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if surface.At(50, 50).A == 0 {
		t.Fatalf("stroke did not paint")
	}
}

func TestRunScriptUndoRevertsLatestStep(t *testing.T) {
	rec, surface := newTestReconciler()
	steps := []scriptStep{
		{Op: "rect", X: 10, Y: 10, Width: 30, Height: 30, Color: "blue", LineWidth: 2},
		{Op: "text", X: 20, Y: 80, Text: "later"},
		{Op: "undo"},
	}
	if err := runScript(rec, steps); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if surface.At(10, 10).A == 0 {
		t.Fatalf("undo erased the earlier rectangle")
	}
	// The text landed well below the rectangle; that band must be blank again.
	for y := 60; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if surface.At(x, y).A != 0 {
				t.Fatalf("undo did not revert the text: pixel (%d,%d) inked", x, y)
			}
		}
	}
}
