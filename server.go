package scrawl

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/internal/discovery"
	"pkt.systems/scrawl/relay"
	"pkt.systems/scrawl/schema"
)

// Server composes the relay and mDNS announcement services.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	Hub() *relay.Hub
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service            schema.ServiceConfig
	DisableAuditTrails bool
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	Sinks []relay.Sink
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableRelay     bool
	enableDiscovery bool
}

// WithRelay enables the websocket relay endpoint.
func WithRelay() ServerOption {
	return func(o *serverOptions) { o.enableRelay = true }
}

// WithDiscovery enables mDNS announcement of the relay on the local network.
func WithDiscovery() ServerOption {
	return func(o *serverOptions) { o.enableDiscovery = true }
}

// New constructs a composable scrawl server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableRelay {
		return nil, errors.New("no services enabled")
	}

	normalized, err := schema.NormalizeServiceConfig(cfg.Service)
	if err != nil {
		return nil, err
	}
	cfg.Service = normalized

	var audit *auditSink
	sinks := make([]relay.Sink, 0, len(deps.Sinks)+1)
	for _, sink := range deps.Sinks {
		if sink != nil {
			sinks = append(sinks, sink)
		}
	}
	if !cfg.DisableAuditTrails {
		audit = &auditSink{}
		sinks = append(sinks, audit)
	}
	var sink relay.Sink
	switch len(sinks) {
	case 0:
	case 1:
		sink = sinks[0]
	default:
		sink = actionFanout{sinks: sinks}
	}

	hub := relay.NewHub(cfg.Service.HistoryCap, sink)
	relaySrv := relay.NewServer(hub)

	return &compositeServer{
		cfg:      cfg,
		options:  options,
		hub:      hub,
		relaySrv: relaySrv,
		audit:    audit,
	}, nil
}

type compositeServer struct {
	cfg      ServerConfig
	options  serverOptions
	hub      *relay.Hub
	relaySrv *relay.Server
	audit    *auditSink
	logger   pslog.Logger

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	errCh      chan error
	advertiser *discovery.Advertiser
	started    bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	if s.audit != nil {
		s.audit.log = log
	}
	log.Info(
		"server start",
		"relay", s.options.enableRelay,
		"discovery", s.options.enableDiscovery,
		"addr", s.cfg.Service.Addr,
		"history_cap", s.cfg.Service.HistoryCap,
	)

	go func() {
		if err := relay.ListenAndServe(s.ctx, s.cfg.Service.Addr, s.relaySrv.Handler()); err != nil {
			log.Error("relay server failed", "err", err)
			s.errCh <- err
		}
	}()

	if s.options.enableDiscovery {
		port, err := addrPort(s.cfg.Service.Addr)
		if err != nil {
			log.Warn("discovery disabled", "err", err)
		} else {
			adv, err := discovery.Advertise(s.ctx, port)
			if err != nil {
				log.Warn("discovery failed to start", "err", err)
			} else {
				s.mu.Lock()
				s.advertiser = adv
				s.mu.Unlock()
			}
		}
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	adv := s.advertiser
	s.advertiser = nil
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if adv != nil {
		if err := adv.Close(); err != nil {
			log.Warn("discovery shutdown failed", "err", err)
		}
	}
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-s.ctx.Done():
		log.Info("server stopped")
		return nil
	}
}

// Hub exposes the relay hub, mainly so embedders and tests can inspect the
// history log or attach subscribers directly.
func (s *compositeServer) Hub() *relay.Hub {
	return s.hub
}

func addrPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	return port, nil
}
