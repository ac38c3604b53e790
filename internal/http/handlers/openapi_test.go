package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAPIJSON(t *testing.T) {
	a := &App{}

	rr := httptest.NewRecorder()
	a.OpenAPIJSON(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("document is not json: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") || len(doc.Paths) == 0 {
		t.Fatalf("unexpected document header: %q with %d paths", doc.OpenAPI, len(doc.Paths))
	}

	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	a.OpenAPIJSON(rr, req)
	if rr.Code != http.StatusNotModified || rr.Body.Len() != 0 {
		t.Fatalf("conditional request: status = %d, body %d bytes", rr.Code, rr.Body.Len())
	}
}

func TestOpenAPIDocs(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{}).OpenAPIDocs(rr, httptest.NewRequest(http.MethodGet, "/v1/docs", nil))
	if !strings.Contains(rr.Body.String(), `spec-url="openapi.json"`) {
		t.Fatalf("docs page does not reference the document: %s", rr.Body.String())
	}
}
