package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pkt.systems/scrawl/client"
	"pkt.systems/scrawl/schema"
)

// scriptStep is one gesture in a YAML script. Ops: stroke, rect, circle,
// text, clear, undo, redo, pause.
type scriptStep struct {
	Op        string       `yaml:"op"`
	Points    [][2]float64 `yaml:"points"`
	X         float64      `yaml:"x"`
	Y         float64      `yaml:"y"`
	Width     float64      `yaml:"width"`
	Height    float64      `yaml:"height"`
	Radius    float64      `yaml:"radius"`
	Color     string       `yaml:"color"`
	LineWidth float64      `yaml:"line_width"`
	Tool      string       `yaml:"tool"`
	Text      string       `yaml:"text"`
	Font      string       `yaml:"font"`
	Millis    int          `yaml:"ms"`
}

func loadScript(path string) ([]scriptStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parseScript(data)
}

func parseScript(data []byte) ([]scriptStep, error) {
	var steps []scriptStep
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range steps {
		switch step.Op {
		case "stroke":
			if len(step.Points) == 0 {
				return nil, fmt.Errorf("step %d: stroke needs at least one point", i+1)
			}
		case "rect", "circle", "text", "clear", "undo", "redo", "pause":
		case "":
			return nil, fmt.Errorf("step %d: missing op", i+1)
		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
	}
	return steps, nil
}

func runScript(rec *client.Reconciler, steps []scriptStep) error {
	for i, step := range steps {
		if err := runStep(rec, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func runStep(rec *client.Reconciler, step scriptStep) error {
	switch step.Op {
	case "stroke":
		tool := schema.Tool(step.Tool)
		first := step.Points[0]
		if err := rec.BeginStroke(first[0], first[1], step.Color, step.LineWidth, tool); err != nil {
			return err
		}
		for _, p := range step.Points[1:] {
			if err := rec.ExtendStroke(p[0], p[1]); err != nil {
				return err
			}
		}
		return rec.EndStroke()
	case "rect":
		return rec.DrawRect(step.X, step.Y, step.Width, step.Height, step.Color, step.LineWidth)
	case "circle":
		return rec.DrawCircle(step.X, step.Y, step.X+step.Radius, step.Y, step.Color, step.LineWidth)
	case "text":
		return rec.WriteText(step.X, step.Y, step.Text, step.Font, step.Color)
	case "clear":
		return rec.Clear()
	case "undo":
		rec.Undo()
		return nil
	case "redo":
		rec.Redo()
		return nil
	case "pause":
		time.Sleep(time.Duration(step.Millis) * time.Millisecond)
		return nil
	}
	return fmt.Errorf("unknown op %q", step.Op)
}
