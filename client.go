package scrawl

import (
	"context"
	"errors"
	"os"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/canvas"
	"pkt.systems/scrawl/client"
	"pkt.systems/scrawl/schema"
)

// ClientConfig configures a drawing client. An empty RelayURL yields an
// offline board that renders locally and publishes nothing.
type ClientConfig struct {
	RelayURL      string
	SurfaceWidth  int
	SurfaceHeight int
}

// Client is a headless drawing client: a raster surface, an action
// interpreter, a snapshot history, and a reconciler, optionally connected to
// a relay over the event channel.
type Client struct {
	surface *canvas.Image
	recon   *client.Reconciler
	channel *client.Channel
	log     pslog.Logger
}

// NewClient builds a client and, when a relay URL is configured, dials it.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	width, height := cfg.SurfaceWidth, cfg.SurfaceHeight
	if width <= 0 {
		width = schema.DefaultSurfaceWidth
	}
	if height <= 0 {
		height = schema.DefaultSurfaceHeight
	}
	logger := pslog.Ctx(ctx)

	surface := canvas.NewImage(width, height)
	interp := canvas.NewInterpreter(surface)
	history := client.NewHistory(surface, logger)

	var ch *client.Channel
	var emitter client.Emitter
	if cfg.RelayURL != "" {
		dialed, err := client.Dial(ctx, cfg.RelayURL)
		if err != nil {
			return nil, err
		}
		ch = dialed
		emitter = ch
	}

	return &Client{
		surface: surface,
		recon:   client.NewReconciler(interp, history, emitter, logger),
		channel: ch,
		log:     logger,
	}, nil
}

// Run consumes the event channel until the context is cancelled or the
// connection drops. It is an error to call Run on an offline client.
func (c *Client) Run(ctx context.Context) error {
	if c.channel == nil {
		return errors.New("client is offline")
	}
	return c.channel.Listen(ctx, c.recon)
}

// Reconciler exposes the gesture surface for frontends.
func (c *Client) Reconciler() *client.Reconciler {
	return c.recon
}

// Surface exposes the raster surface.
func (c *Client) Surface() canvas.Surface {
	return c.surface
}

// ExportPNG writes the current surface to path as a PNG.
func (c *Client) ExportPNG(path string) error {
	snap, err := c.surface.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, snap, 0o644)
}

// ExportPDF writes the current surface to path as a single-page PDF.
func (c *Client) ExportPDF(path string) error {
	snap, err := c.surface.Export()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := canvas.WritePDF(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close tears down the event channel, if any.
func (c *Client) Close() error {
	if c.channel == nil {
		return nil
	}
	return c.channel.Close()
}
