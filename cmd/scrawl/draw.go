package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/scrawl"
	"pkt.systems/scrawl/internal/appconfig"
	"pkt.systems/scrawl/internal/discovery"
)

func newDrawCmd() *cobra.Command {
	var cfgPath string
	var relayURL string
	var scriptPath string
	var outPNG string
	var outPDF string
	var mirror time.Duration
	var width, height int
	var offline bool
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Run a headless drawing client",
		Long: "Draw connects to a relay (or runs offline), optionally plays a YAML\n" +
			"gesture script, mirrors the shared board for a while, and exports the\n" +
			"resulting surface as PNG or PDF.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger := pslog.Ctx(ctx)

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if width == 0 {
				width = cfg.Surface.Width
			}
			if height == 0 {
				height = cfg.Surface.Height
			}

			url := relayURL
			if url == "" {
				url = cfg.Client.RelayURL
			}
			if url == "" && !offline {
				addrs, err := discovery.Browse(ctx)
				if err != nil {
					logger.Warn("relay discovery failed", "err", err)
				}
				if len(addrs) > 0 {
					url = "ws://" + addrs[0] + "/ws"
					logger.Info("relay discovered", "url", url)
				}
			}
			if url == "" && !offline {
				return errors.New("no relay configured or discovered; pass --relay or --offline")
			}
			if offline {
				url = ""
			}

			client, err := scrawl.NewClient(ctx, scrawl.ClientConfig{
				RelayURL:      url,
				SurfaceWidth:  width,
				SurfaceHeight: height,
			})
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if url != "" {
				go func() {
					if err := client.Run(ctx); err != nil && ctx.Err() == nil {
						logger.Warn("event channel closed", "err", err)
					}
				}()
			}

			if scriptPath != "" {
				steps, err := loadScript(scriptPath)
				if err != nil {
					return err
				}
				if err := runScript(client.Reconciler(), steps); err != nil {
					return err
				}
				logger.Info("script played", "steps", len(steps))
			}

			if mirror > 0 && url != "" {
				logger.Info("mirroring board", "for", mirror.String())
				select {
				case <-time.After(mirror):
				case <-ctx.Done():
				}
			}

			if outPNG != "" {
				if err := client.ExportPNG(outPNG); err != nil {
					return fmt.Errorf("export png: %w", err)
				}
				logger.Info("surface exported", "path", outPNG, "format", "png")
			}
			if outPDF != "" {
				if err := client.ExportPDF(outPDF); err != nil {
					return fmt.Errorf("export pdf: %w", err)
				}
				logger.Info("surface exported", "path", outPDF, "format", "pdf")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&relayURL, "relay", "", "relay websocket URL (e.g. ws://host:8667/ws)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML gesture script to play")
	cmd.Flags().StringVar(&outPNG, "png", "", "write the final surface to this PNG path")
	cmd.Flags().StringVar(&outPDF, "pdf", "", "write the final surface to this PDF path")
	cmd.Flags().DurationVar(&mirror, "mirror", 0, "keep mirroring the board for this long before exporting")
	cmd.Flags().IntVar(&width, "width", 0, "surface width in pixels (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "surface height in pixels (overrides config)")
	cmd.Flags().BoolVar(&offline, "offline", false, "draw locally without a relay")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "List relays announced on the local network",
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := discovery.Browse(cmd.Context())
			if err != nil {
				return err
			}
			if len(addrs) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no relays found")
				return err
			}
			for _, addr := range addrs {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "ws://%s/ws\n", addr); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
