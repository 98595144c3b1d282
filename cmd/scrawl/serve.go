package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/scrawl"
	"pkt.systems/scrawl/internal/appconfig"
	"pkt.systems/scrawl/schema"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	var historyCap int
	var disableAuditTrails bool
	var noDiscovery bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scrawl relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Relay.Addr = addr
			}
			if cmd.Flags().Changed("history-cap") {
				cfg.Relay.HistoryCap = historyCap
			}
			if disableAuditTrails {
				cfg.Logging.DisableAuditTrails = true
			}
			if noDiscovery {
				cfg.Discovery.Advertise = false
			}

			serverCfg := scrawl.ServerConfig{
				Service: schema.ServiceConfig{
					Addr:          cfg.Relay.Addr,
					HistoryCap:    cfg.Relay.HistoryCap,
					SurfaceWidth:  cfg.Surface.Width,
					SurfaceHeight: cfg.Surface.Height,
				},
				DisableAuditTrails: cfg.Logging.DisableAuditTrails,
			}
			opts := []scrawl.ServerOption{scrawl.WithRelay()}
			if cfg.Discovery.Advertise {
				opts = append(opts, scrawl.WithDiscovery())
			}
			server, err := scrawl.New(serverCfg, scrawl.ServerDeps{}, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			logger.Info("relay listening", "addr", cfg.Relay.Addr)
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().IntVar(&historyCap, "history-cap", schema.DefaultHistoryCap, "history log capacity (overrides config)")
	cmd.Flags().BoolVar(&disableAuditTrails, "disable-audit-trails", false, "disable per-action audit logging")
	cmd.Flags().BoolVar(&noDiscovery, "no-discovery", false, "do not announce the relay via mDNS")
	return cmd
}
