package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lemonberrylabs/calculator/pkg/store"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.New(10), logger)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", data, err)
	}
	return resp.StatusCode, out
}

func TestCalculateEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		expression string
		want       string
	}{
		{"2+3", "5"},
		{"2+3*4", "14"},
		{"5/0", "Error"},
		{"", "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"expression": tt.expression})
			code, out := doJSON(t, srv, "POST", "/v1/calculate", string(body))
			if code != 200 {
				t.Fatalf("expected 200, got %d: %v", code, out)
			}
			if out["result"] != tt.want {
				t.Errorf("result = %v, want %s", out["result"], tt.want)
			}
		})
	}
}

func TestExplainEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	code, out := doJSON(t, srv, "POST", "/v1/expressions:explain", `{"expression":"8-3-2"}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if out["postfix"] != "8 3 - 2 -" || out["result"] != "3" {
		t.Errorf("unexpected body %v", out)
	}
	if _, ok := out["error"]; ok {
		t.Errorf("unexpected error field: %v", out["error"])
	}

	code, out = doJSON(t, srv, "POST", "/v1/expressions:explain", `{"expression":"5/0"}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	errObj, ok := out["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", out)
	}
	tags, _ := errObj["tags"].([]interface{})
	found := false
	for _, tag := range tags {
		if tag == "DivisionByZero" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DivisionByZero tag, got %v", tags)
	}
}

func TestPostfixEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	code, out := doJSON(t, srv, "POST", "/v1/expressions:postfix", `{"expression":"3*-2"}`)
	if code != 200 || out["postfix"] != "3 0 * 2 -" {
		t.Fatalf("got %d %v", code, out)
	}

	code, out = doJSON(t, srv, "POST", "/v1/expressions:postfix", `{"expression":"1.2.3"}`)
	if code != 400 {
		t.Fatalf("expected 400, got %d: %v", code, out)
	}
	errObj := out["error"].(map[string]interface{})
	if errObj["status"] != "INVALID_ARGUMENT" {
		t.Errorf("status = %v", errObj["status"])
	}
}

func TestInvalidBody(t *testing.T) {
	srv := setupTestServer(t)
	code, _ := doJSON(t, srv, "POST", "/v1/calculate", `{"expression":`)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := setupTestServer(t)

	code, sess := doJSON(t, srv, "POST", "/v1/sessions", "")
	if code != 200 {
		t.Fatalf("create: %d %v", code, sess)
	}
	name := sess["name"].(string)
	id := strings.TrimPrefix(name, "sessions/")

	code, sess = doJSON(t, srv, "POST", "/v1/sessions/"+id+":press", `{"inputs":["7","+","3"]}`)
	if code != 200 {
		t.Fatalf("press: %d %v", code, sess)
	}
	display := sess["display"].(map[string]interface{})
	if display["entry"] != "3" || display["pending"] != "7+" {
		t.Errorf("display = %v", display)
	}

	_, sess = doJSON(t, srv, "POST", "/v1/sessions/"+id+":press", `{"inputs":["="]}`)
	display = sess["display"].(map[string]interface{})
	if display["entry"] != "10" || display["pending"] != "" {
		t.Errorf("display after = : %v", display)
	}

	code, hist := doJSON(t, srv, "GET", "/v1/sessions/"+id+"/history", "")
	if code != 200 {
		t.Fatalf("history: %d", code)
	}
	calcs := hist["calculations"].([]interface{})
	if len(calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %v", calcs)
	}
	first := calcs[0].(map[string]interface{})
	if first["expression"] != "7+3" || first["result"] != "10" {
		t.Errorf("calculation = %v", first)
	}

	code, list := doJSON(t, srv, "GET", "/v1/sessions", "")
	if code != 200 || len(list["sessions"].([]interface{})) != 1 {
		t.Fatalf("list: %d %v", code, list)
	}

	code, _ = doJSON(t, srv, "DELETE", "/v1/sessions/"+id, "")
	if code != 200 {
		t.Fatalf("delete: %d", code)
	}
	code, _ = doJSON(t, srv, "GET", "/v1/sessions/"+id, "")
	if code != 404 {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
}

func TestPressErrors(t *testing.T) {
	srv := setupTestServer(t)

	code, _ := doJSON(t, srv, "POST", "/v1/sessions/missing:press", `{"inputs":["1"]}`)
	if code != 404 {
		t.Errorf("expected 404 for unknown session, got %d", code)
	}

	_, sess := doJSON(t, srv, "POST", "/v1/sessions", "")
	id := strings.TrimPrefix(sess["name"].(string), "sessions/")

	code, _ = doJSON(t, srv, "POST", "/v1/sessions/"+id+":press", `{"inputs":[]}`)
	if code != 400 {
		t.Errorf("expected 400 for empty inputs, got %d", code)
	}
	code, _ = doJSON(t, srv, "POST", "/v1/sessions/"+id+":press", `{"inputs":["sqrt"]}`)
	if code != 400 {
		t.Errorf("expected 400 for unknown command, got %d", code)
	}
}

func TestHealthz(t *testing.T) {
	srv := setupTestServer(t)
	code, out := doJSON(t, srv, "GET", "/healthz", "")
	if code != 200 || out["status"] != "ok" {
		t.Fatalf("got %d %v", code, out)
	}
}
