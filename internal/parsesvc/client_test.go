package parsesvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicsignal/augur/pkg/augur/pipeline"
)

func TestParseSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "Rebels attacked." {
			t.Errorf("request text: %q", req.Text)
		}
		json.NewEncoder(w).Encode(map[string]string{"parse": "(root (np rebels) (vp attacked))"})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	tree, err := c.Parse(context.Background(), "Rebels attacked.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "(ROOT (NP REBELS ) (VP ATTACKED ) )"
	if tree != want {
		t.Errorf("normalized tree: got %q want %q", tree, want)
	}
}

func TestParseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}
	_, err := c.Parse(context.Background(), "Slow sentence.")

	var f *pipeline.Failure
	if !errors.As(err, &f) {
		t.Fatalf("want pipeline.Failure, got %v", err)
	}
	if f.Reason != pipeline.ReasonTimeout {
		t.Errorf("reason: got %q", f.Reason)
	}
}

func TestParseInvalidResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "empty parse",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"parse": "  "})
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "service error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"message":"parser crashed"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := &Client{BaseURL: srv.URL}
			_, err := c.Parse(context.Background(), "A sentence.")

			var f *pipeline.Failure
			if !errors.As(err, &f) {
				t.Fatalf("want pipeline.Failure, got %v", err)
			}
			if f.Reason != pipeline.ReasonInvalidResponse {
				t.Errorf("reason: got %q", f.Reason)
			}
		})
	}
}

func TestParseRequiresBaseURL(t *testing.T) {
	c := &Client{}
	if _, err := c.Parse(context.Background(), "A."); err == nil {
		t.Fatal("want configuration error")
	}
}

func TestNormalizeTree(t *testing.T) {
	got := NormalizeTree("  (root (a b))\n")
	if got != "(ROOT (A B ) )" {
		t.Errorf("got %q", got)
	}
}
