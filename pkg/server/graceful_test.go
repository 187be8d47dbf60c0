package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}
}

func TestNewGracefulServer_Defaults(t *testing.T) {
	gs := NewGracefulServer(config.ServerConfig{Host: "localhost", Port: 8000}, okHandler(), nil)

	if gs.Addr() != "localhost:8000" {
		t.Errorf("Addr() = %q, want localhost:8000", gs.Addr())
	}
	if gs.server.ReadTimeout != 30*time.Second || gs.shutdownTimeout != 30*time.Second {
		t.Errorf("zero timeouts should default to 30s, got %v and %v", gs.server.ReadTimeout, gs.shutdownTimeout)
	}
}

// TestGracefulServer_ServeAndCancel serves a request and stops on cancellation
func TestGracefulServer_ServeAndCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := NewGracefulServer(testConfig(), okHandler(), logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
	if !gs.IsShuttingDown() {
		t.Error("server should report shutting down")
	}
}

// TestGracefulServer_SIGHUPReloads checks that SIGHUP reloads without stopping
func TestGracefulServer_SIGHUPReloads(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := NewGracefulServer(testConfig(), okHandler(), logging.NewNopLogger())

	reloaded := make(chan struct{}, 1)
	gs.SetReloadFunc(func() error {
		reloaded <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gs.Serve(ctx, ln)
	time.Sleep(100 * time.Millisecond)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload function was not called")
	}
	if gs.IsShuttingDown() {
		t.Error("Server should not be shutting down after SIGHUP")
	}
}

func TestGracefulServer_Reload(t *testing.T) {
	gs := NewGracefulServer(testConfig(), okHandler(), nil)

	if err := gs.Reload(); err != nil {
		t.Errorf("Reload() without a function = %v, want nil", err)
	}

	boom := errors.New("cache unreadable")
	gs.SetReloadFunc(func() error { return boom })
	if err := gs.Reload(); !errors.Is(err, boom) {
		t.Errorf("Reload() error = %v, want %v", err, boom)
	}
}

func TestGracefulServer_ShutdownIdempotent(t *testing.T) {
	gs := NewGracefulServer(testConfig(), okHandler(), nil)

	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("first Shutdown() error = %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	select {
	case <-gs.ShutdownChannel():
	default:
		t.Error("shutdown channel should be closed")
	}
}
