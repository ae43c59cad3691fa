package transport

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubTransport struct {
	resp  *http.Response
	err   error
	calls int
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	return s.resp, s.err
}

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestRoundTripPrefersHTTP2(t *testing.T) {
	h2 := &stubTransport{resp: okResponse("h2")}
	h1 := &stubTransport{resp: okResponse("h1")}
	bt := &browserTransport{h2: h2, h1: h1}

	req := httptest.NewRequest("GET", "https://shop.example.com/", nil)
	resp, err := bt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "h2" {
		t.Errorf("Body = %s, want h2", body)
	}
	if h1.calls != 0 {
		t.Errorf("h1 calls = %d, want 0", h1.calls)
	}
}

func TestRoundTripFallsBackToHTTP1(t *testing.T) {
	h2 := &stubTransport{err: errors.New("http2: unsupported scheme")}
	h1 := &stubTransport{resp: okResponse("h1")}
	bt := &browserTransport{h2: h2, h1: h1}

	req := httptest.NewRequest("GET", "https://shop.example.com/", nil)
	resp, err := bt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "h1" {
		t.Errorf("Body = %s, want h1", body)
	}
	if h2.calls != 1 || h1.calls != 1 {
		t.Errorf("calls h2=%d h1=%d, want 1 and 1", h2.calls, h1.calls)
	}
}

func TestRoundTripBothFail(t *testing.T) {
	h2 := &stubTransport{err: errors.New("h2 refused")}
	h1 := &stubTransport{err: errors.New("connection reset")}
	bt := &browserTransport{h2: h2, h1: h1}

	req := httptest.NewRequest("GET", "https://shop.example.com/", nil)
	_, err := bt.RoundTrip(req)
	if err == nil {
		t.Fatal("Expected error when both transports fail")
	}
	// The HTTP/1.1 error is the one surfaced
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Error = %v, want the h1 error", err)
	}
}

func TestNewBrowserTransport(t *testing.T) {
	rt := NewBrowserTransport(5 * time.Second)
	bt, ok := rt.(*browserTransport)
	if !ok {
		t.Fatalf("NewBrowserTransport() = %T, want *browserTransport", rt)
	}
	if bt.h2 == nil || bt.h1 == nil {
		t.Error("Both transports should be configured")
	}
}
