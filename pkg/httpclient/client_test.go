package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoReturnsSuccessImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(WithMaxRetries(3), WithBaseDelay(time.Millisecond))
	req, _ := http.NewRequest("GET", srv.URL, nil)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestDoRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("retry-after", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(
		WithMaxRetries(3),
		WithBaseDelay(time.Millisecond),
		WithHeaderParser(ParseAnthropicHeaders),
	)
	req, _ := http.NewRequest("GET", srv.URL, nil)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(WithMaxRetries(3), WithBaseDelay(time.Millisecond))
	req, _ := http.NewRequest("GET", srv.URL, nil)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server called %d times, want 1: 4xx must not be retried", got)
	}
}

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		status int
		want   RetryStrategy
	}{
		{http.StatusTooManyRequests, SmartRetry},
		{http.StatusServiceUnavailable, SmartRetry},
		{http.StatusInternalServerError, ConservativeRetry},
		{http.StatusBadGateway, ConservativeRetry},
		{http.StatusGatewayTimeout, ConservativeRetry},
		{http.StatusRequestTimeout, ConservativeRetry},
		{http.StatusBadRequest, NoRetry},
		{http.StatusUnauthorized, NoRetry},
		{http.StatusNotFound, NoRetry},
	}

	for _, tt := range tests {
		if got := strategyFor(tt.status); got != tt.want {
			t.Errorf("strategyFor(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseAnthropicHeadersRetryAfter(t *testing.T) {
	headers := http.Header{}
	headers.Set("retry-after", "2")

	info := ParseAnthropicHeaders(headers)
	if info.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %v", info.RetryAfter)
	}
}

func TestDelayForSmartRetryHonorsRetryAfter(t *testing.T) {
	c := New(WithBaseDelay(time.Second))

	delay := c.delayFor(SmartRetry, 0, RateLimitInfo{RetryAfter: 5 * time.Second})
	if delay != 5*time.Second {
		t.Errorf("delay = %v, want 5s", delay)
	}
}

func TestDelayForConservativeGivesUpAfterTwo(t *testing.T) {
	c := New()

	if d := c.delayFor(ConservativeRetry, 0, RateLimitInfo{}); d <= 0 {
		t.Error("first conservative retry should have a delay")
	}
	if d := c.delayFor(ConservativeRetry, 2, RateLimitInfo{}); d != 0 {
		t.Errorf("third conservative attempt should give up, got %v", d)
	}
}
