package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcapi "github.com/lemonberrylabs/calculator/pkg/api/grpc"
	"github.com/lemonberrylabs/calculator/pkg/config"
)

// freePort reserves an ephemeral port and releases it for the server to bind.
func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

// waitForHealthy polls /healthz until the server answers.
func waitForHealthy(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s not healthy within %s", baseURL, timeout)
}

func postJSON(t *testing.T, url string, body interface{}) map[string]interface{} {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return result
}

func TestServeEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.GRPCPort = freePort(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger) }()

	baseURL := fmt.Sprintf("http://%s", cfg.Addr())
	waitForHealthy(t, baseURL, 5*time.Second)

	res := postJSON(t, baseURL+"/v1/calculate", map[string]string{"expression": "2+3*4"})
	if res["result"] != "14" {
		t.Errorf("HTTP calculate result = %v, want 14", res["result"])
	}

	// Sessions created over HTTP are visible to gRPC: both share one store.
	sess := postJSON(t, baseURL+"/v1/sessions", map[string]string{})
	name, _ := sess["name"].(string)
	if name == "" {
		t.Fatalf("no session name in %v", sess)
	}

	conn, err := grpc.NewClient(cfg.GRPCAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	client := grpcapi.NewClient(conn)

	rpcCtx, rpcCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rpcCancel()
	got, err := client.Calculate(rpcCtx, "9/4")
	if err != nil {
		t.Fatalf("gRPC Calculate: %v", err)
	}
	if got != "2.25" {
		t.Errorf("gRPC Calculate = %q, want 2.25", got)
	}
	out, err := client.Press(rpcCtx, name, []string{"6", "*", "7", "="})
	if err != nil {
		t.Fatalf("gRPC Press: %v", err)
	}
	if out["session"] != name || out["entry"] != "42" {
		t.Errorf("gRPC Press = %v, want entry 42 on %s", out, name)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeCancelledBeforeStart(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.GRPCPort = freePort(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return for a cancelled context")
	}

	for _, addr := range []string{cfg.Addr(), cfg.GRPCAddr()} {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			t.Fatalf("%s still bound after serve returned: %v", addr, err)
		}
		lis.Close()
	}
}

func TestServePortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer busy.Close()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = busy.Addr().(*net.TCPAddr).Port
	cfg.Server.GRPCPort = freePort(t)

	err = serve(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected listen error for a bound port")
	}
}
