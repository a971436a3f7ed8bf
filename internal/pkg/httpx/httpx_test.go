package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 599} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should not be retryable", code)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatal("nil error is not retryable")
	}
	if IsRetryableError(context.Canceled) || IsRetryableError(context.DeadlineExceeded) {
		t.Fatal("context errors must not be retried")
	}
	if !IsRetryableError(statusErr(503)) {
		t.Fatal("503 should be retryable")
	}
	if IsRetryableError(statusErr(400)) {
		t.Fatal("400 should not be retryable")
	}
	if IsRetryableError(errors.New("opaque")) {
		t.Fatal("unknown errors should not be retried")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("got %v, want 3s", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("got %v, want capped 2s", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("got %v, want fallback 1s", got)
	}
}

func TestJitterSleep(t *testing.T) {
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	base := time.Second
	for i := 0; i < 100; i++ {
		got := JitterSleep(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter %v outside 20%% band", got)
		}
	}
}
