package api

import (
	"net/http"
	"testing"

	"github.com/efarmaplus/storefront/pkg/config"
)

func TestNewServerAddress(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Port: "8080"}}

	t.Setenv("PORT", "")
	if srv := NewServer(cfg, http.NotFoundHandler()); srv.Addr != ":8080" {
		t.Fatalf("expected configured port, got %q", srv.Addr)
	}

	t.Setenv("PORT", "9090")
	srv := NewServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Fatalf("expected PORT override, got %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Fatalf("expected read header timeout")
	}
}
