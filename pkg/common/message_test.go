package common

import (
	"context"
	"testing"

	"github.com/Suhaibinator/SServer/pkg/state"
)

func TestParseURI(t *testing.T) {
	u := ParseURI("/x?a=1&b=&c")

	if u.Path() != "/x" {
		t.Errorf("Expected path %q, got %q", "/x", u.Path())
	}
	if v, ok := u.Query("a"); !ok || v != "1" {
		t.Errorf("Expected query a=1, got %q, %v", v, ok)
	}
	if v, ok := u.Query("b"); !ok || v != "" {
		t.Errorf("Expected query b to be empty, got %q, %v", v, ok)
	}
	if v, ok := u.Query("c"); !ok || v != "" {
		t.Errorf("Expected query c without '=' to be empty, got %q, %v", v, ok)
	}
	if _, ok := u.Query("missing"); ok {
		t.Errorf("Expected missing query to be absent")
	}
}

func TestParseURIWithoutQuery(t *testing.T) {
	u := ParseURI("/plain/path")
	if u.Path() != "/plain/path" {
		t.Errorf("Expected path %q, got %q", "/plain/path", u.Path())
	}
	if u.HasQuery() {
		t.Errorf("Expected no query")
	}
	if _, ok := u.Query("a"); ok {
		t.Errorf("Expected no query parameters")
	}
	if u.String() != "/plain/path" {
		t.Errorf("Expected String() %q, got %q", "/plain/path", u.String())
	}
}

func TestParseURIValueContainsEquals(t *testing.T) {
	u := ParseURI("/x?token=a=b?c")
	if v, _ := u.Query("token"); v != "a=b?c" {
		t.Errorf("Expected value split on first '=' only, got %q", v)
	}
	if u.Path() != "/x" {
		t.Errorf("Expected path %q, got %q", "/x", u.Path())
	}
}

func TestURIParams(t *testing.T) {
	u := ParseURI("/users/42")
	if _, ok := u.Param("id"); ok {
		t.Errorf("Expected no params before a match")
	}
	u.SetParams(map[string]string{"id": "42"})
	if v, ok := u.Param("id"); !ok || v != "42" {
		t.Errorf("Expected param id=42, got %q", v)
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, ok := ParseMethod(m.String())
		if !ok || got != m {
			t.Errorf("Expected %s to parse, got %q, %v", m, got, ok)
		}
	}
	for _, s := range []string{"get", "PATCH", "HEAD", "", "GARBAGE"} {
		if _, ok := ParseMethod(s); ok {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

func TestStatusReason(t *testing.T) {
	tests := []struct {
		status StatusCode
		reason string
	}{
		{StatusOK, "OK"},
		{StatusNoContent, "No Content"},
		{StatusBadRequest, "Bad Request"},
		{StatusNotFound, "Not Found"},
		{StatusInternalServerError, "Internal Server Error"},
		{StatusCode(299), "Unknown"},
	}
	for _, tt := range tests {
		if tt.status.Reason() != tt.reason {
			t.Errorf("Expected reason %q for %d, got %q", tt.reason, tt.status, tt.status.Reason())
		}
	}
	if StatusNotFound.String() != "404 Not Found" {
		t.Errorf("Expected %q, got %q", "404 Not Found", StatusNotFound.String())
	}
}

func TestResponsePresets(t *testing.T) {
	if OK().Status != StatusOK || len(OK().Body) != 0 {
		t.Errorf("Expected empty 200 preset")
	}
	if NoContent().Status != StatusNoContent {
		t.Errorf("Expected 204 preset")
	}
	if BadRequest().Status != StatusBadRequest || len(BadRequest().Body) != 0 {
		t.Errorf("Expected empty 400 preset")
	}
	if InternalServerError().Status != StatusInternalServerError {
		t.Errorf("Expected 500 preset")
	}
	nf := NotFound()
	if nf.Status != StatusNotFound || string(nf.Body) != "Not Found" {
		t.Errorf("Expected 404 preset with body %q, got %d %q", "Not Found", nf.Status, nf.Body)
	}
	if nf.Version != HTTP11 {
		t.Errorf("Expected version %s, got %s", HTTP11, nf.Version)
	}
}

func TestRequestHeaders(t *testing.T) {
	req := NewRequest(MethodPost, "/")
	req.SetHeader("Content-Type", "text/plain")
	req.SetHeader("Content-Type", "application/json")

	if v, _ := req.GetHeader("Content-Type"); v != "application/json" {
		t.Errorf("Expected last write to win, got %q", v)
	}
	if v, ok := req.GetHeader("content-type"); !ok || v != "application/json" {
		t.Errorf("Expected case-insensitive lookup to find the header, got %q", v)
	}
}

func TestRequestHeaderCaseVariants(t *testing.T) {
	req := NewRequest(MethodGet, "/")
	req.SetHeader("x-token", "lower")
	req.SetHeader("X-Token", "canonical")
	req.SetHeader("X-TOKEN", "upper")

	// Lookups that hit no exact key always pick the same variant
	for i := 0; i < 20; i++ {
		if v, _ := req.GetHeader("x-Token"); v != "upper" {
			t.Fatalf("Expected %q from the first sorted key, got %q", "upper", v)
		}
	}
	if v, _ := req.GetHeader("x-token"); v != "lower" {
		t.Errorf("Expected exact match %q, got %q", "lower", v)
	}
}

func TestRequestClone(t *testing.T) {
	req := NewRequest(MethodPost, "/a?x=1")
	req.SetHeader("K", "v")
	req.Body = []byte("body")
	req.URI.SetParams(map[string]string{"id": "1"})

	c := req.Clone()
	c.SetHeader("K", "changed")
	c.Body[0] = 'B'
	c.URI.SetParams(map[string]string{"id": "2"})

	if v, _ := req.GetHeader("K"); v != "v" {
		t.Errorf("Expected original header to be unchanged, got %q", v)
	}
	if string(req.Body) != "body" {
		t.Errorf("Expected original body to be unchanged, got %q", req.Body)
	}
	if id, _ := req.Param("id"); id != "1" {
		t.Errorf("Expected original params to be unchanged, got %q", id)
	}
}

type ctxKey struct{}

func TestRequestContext(t *testing.T) {
	req := NewRequest(MethodGet, "/")
	if req.Context() == nil {
		t.Fatalf("Expected non-nil default context")
	}

	req2 := req.WithContext(context.WithValue(req.Context(), ctxKey{}, "v"))
	if req2.Context().Value(ctxKey{}) != "v" {
		t.Errorf("Expected context value on new request")
	}
	if req.Context().Value(ctxKey{}) != nil {
		t.Errorf("Expected original request context to be unchanged")
	}
	if req2.Clone().Context().Value(ctxKey{}) != "v" {
		t.Errorf("Expected clone to share the context")
	}
}

func TestHandlerAdapters(t *testing.T) {
	st := state.New()
	state.Set(st, "shared")

	stateless := Stateless(func(req *Request) *Response {
		return Text(StatusOK, "stateless")
	})
	stateful := Stateful(func(req *Request, st *state.State) *Response {
		v, ok := state.Get[string](st)
		if !ok {
			return InternalServerError()
		}
		return Text(StatusOK, *v)
	})

	for name, tt := range map[string]struct {
		h    Handler
		body string
	}{
		"stateless": {stateless, "stateless"},
		"stateful":  {stateful, "shared"},
	} {
		resp := tt.h.Handle(NewRequest(MethodGet, "/"), st)
		if string(resp.Body) != tt.body {
			t.Errorf("%s: expected body %q, got %q", name, tt.body, resp.Body)
		}
	}
}
