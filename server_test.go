package scrawl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"pkt.systems/scrawl/canvas"
	"pkt.systems/scrawl/schema"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func startServer(t *testing.T, ctx context.Context) (Server, string) {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	srv, err := New(ServerConfig{
		Service: schema.ServiceConfig{Addr: addr, HistoryCap: 50},
	}, ServerDeps{}, WithRelay())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	healthz := "http://" + addr + "/healthz"
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(healthz)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return srv, "ws://" + addr + "/ws"
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("relay never became healthy")
	return nil, ""
}

func waitPixel(t *testing.T, img *canvas.Image, x, y int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if img.At(x, y).A != 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("pixel (%d,%d) never painted", x, y)
}

func TestTwoClientsConverge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, wsURL := startServer(t, ctx)

	clientA, err := NewClient(ctx, ClientConfig{RelayURL: wsURL, SurfaceWidth: 200, SurfaceHeight: 200})
	if err != nil {
		t.Fatalf("client A: %v", err)
	}
	defer clientA.Close()
	clientB, err := NewClient(ctx, ClientConfig{RelayURL: wsURL, SurfaceWidth: 200, SurfaceHeight: 200})
	if err != nil {
		t.Fatalf("client B: %v", err)
	}
	defer clientB.Close()
	go func() { _ = clientA.Run(ctx) }()
	go func() { _ = clientB.Run(ctx) }()

	rec := clientA.Reconciler()
	if err := rec.BeginStroke(20, 100, "black", 4, schema.ToolPen); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := rec.ExtendStroke(180, 100); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := rec.EndStroke(); err != nil {
		t.Fatalf("end: %v", err)
	}

	imgA := clientA.Surface().(*canvas.Image)
	imgB := clientB.Surface().(*canvas.Image)
	waitPixel(t, imgB, 100, 100)

	for _, x := range []int{20, 60, 100, 140, 180} {
		if imgA.At(x, 100) != imgB.At(x, 100) {
			t.Fatalf("surfaces diverge at x=%d: A=%v B=%v", x, imgA.At(x, 100), imgB.At(x, 100))
		}
	}
	if got := len(srv.Hub().History()); got != 3 {
		t.Fatalf("history length = %d, want 3", got)
	}
}

func TestLateJoinerConvergesViaReplay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, wsURL := startServer(t, ctx)

	clientA, err := NewClient(ctx, ClientConfig{RelayURL: wsURL, SurfaceWidth: 200, SurfaceHeight: 200})
	if err != nil {
		t.Fatalf("client A: %v", err)
	}
	defer clientA.Close()
	go func() { _ = clientA.Run(ctx) }()

	if err := clientA.Reconciler().DrawRect(40, 40, 80, 60, "red", 3); err != nil {
		t.Fatalf("rect: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && len(srv.Hub().History()) < 1 {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(srv.Hub().History()); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}

	clientB, err := NewClient(ctx, ClientConfig{RelayURL: wsURL, SurfaceWidth: 200, SurfaceHeight: 200})
	if err != nil {
		t.Fatalf("client B: %v", err)
	}
	defer clientB.Close()
	go func() { _ = clientB.Run(ctx) }()

	imgB := clientB.Surface().(*canvas.Image)
	waitPixel(t, imgB, 40, 40)
	imgA := clientA.Surface().(*canvas.Image)
	if imgA.At(40, 40) != imgB.At(40, 40) {
		t.Fatalf("late joiner diverges: A=%v B=%v", imgA.At(40, 40), imgB.At(40, 40))
	}
}

func TestOfflineClientDrawsWithoutRelay(t *testing.T) {
	c, err := NewClient(context.Background(), ClientConfig{SurfaceWidth: 100, SurfaceHeight: 100})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()
	if err := c.Run(context.Background()); err == nil {
		t.Fatalf("expected offline Run to fail")
	}
	if err := c.Reconciler().WriteText(10, 50, "hi", "", "black"); err != nil {
		t.Fatalf("text: %v", err)
	}
	snap, err := c.Surface().Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap) == 0 {
		t.Fatalf("empty snapshot")
	}
}

func TestNewRequiresEnabledService(t *testing.T) {
	if _, err := New(ServerConfig{}, ServerDeps{}); err == nil {
		t.Fatalf("expected error with no services enabled")
	}
}
