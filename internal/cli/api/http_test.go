package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestPostJSON_SendsToken_And_ParsesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization header missing token, got: %q", got)
		}
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("bad json: %v", err)
		}
		if m["x"] != float64(1) { // JSON number → float64
			t.Errorf("unexpected payload: %#v", m)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := NewClient(ts.URL+"/", "tok123").PostJSON(context.Background(), "/api", map[string]any{"x": 1}, &out); err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if !out.OK {
		t.Fatalf("body not decoded")
	}
}

func TestGetJSON_QueryAndStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "open" {
			http.Error(w, "bad filter", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "")
	var out []int
	if err := c.GetJSON(context.Background(), "/x", url.Values{"status": {"open"}}, &out); err != nil {
		t.Fatalf("GetJSON err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unexpected body: %v", out)
	}

	err := c.GetJSON(context.Background(), "/x", nil, &out)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadRequest || se.Message != "bad filter" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestDo_BadJSONResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer ts.Close()

	var out map[string]any
	if err := NewClient(ts.URL, "").GetJSON(context.Background(), "/", nil, &out); err == nil {
		t.Fatalf("expected decode error")
	}
}
