package sentiment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	model := trainedTestModel(t)
	tok := NewTokenizer(WithSegmentation(false))
	return NewServer(model, tok, "localhost:0", zerolog.Nop())
}

func TestServerHealth(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz returned %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health response is not JSON: %v", err)
	}
	if body["status"] != "ok" || body["model"] == "" {
		t.Errorf("health response = %v", body)
	}
}

func TestServerIndex(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / returned %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("GET / content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Error("GET / did not serve the page")
	}
}

func TestServerPredict(t *testing.T) {
	srv := testServer(t)
	handler := srv.Handler()

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"text": "this was good fun"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("predict returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp predictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("predict response is not JSON: %v", err)
	}
	if resp.Label != "positive" {
		t.Errorf("predicted %q for positive text", resp.Label)
	}
	if len(resp.Tokens) == 0 {
		t.Error("predict response carries no tokens")
	}
	var sum float64
	for _, p := range resp.Scores {
		sum += p
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("scores sum to %v", sum)
	}

	if rec := post(`{"text": "this was bad boring"}`); rec.Code == http.StatusOK {
		var neg predictResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &neg); err != nil {
			t.Fatalf("predict response is not JSON: %v", err)
		}
		if neg.Label != "negative" {
			t.Errorf("predicted %q for negative text", neg.Label)
		}
	} else {
		t.Errorf("predict returned %d", rec.Code)
	}
}

func TestServerPredictBadRequest(t *testing.T) {
	srv := testServer(t)
	handler := srv.Handler()

	tests := []struct {
		body string
		desc string
	}{
		{`{"text": ""}`, "empty text"},
		{`{"text": "   "}`, "whitespace text"},
		{`{not json`, "malformed body"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("predict returned %d, want 400", rec.Code)
			}
		})
	}
}
