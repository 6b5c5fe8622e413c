package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/advisor"
)

func noBackoff(int) time.Duration { return 0 }

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&advisor.RetryableError{StatusCode: 429}) {
		t.Error("expected RetryableError to be retryable")
	}
	wrapped := errors.Join(errors.New("context"), &advisor.RetryableError{StatusCode: 500})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("bad request")) {
		t.Error("expected plain error not to be retryable")
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := min(time.Duration(1<<uint(attempt))*time.Second, 30*time.Second)
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: backoff %v outside [%v, %v)", attempt, d, base, base+base/2)
		}
	}
}

func TestRetryingProvider_RecoversFromTransientError(t *testing.T) {
	p := &scriptedProvider{
		errs:    []error{&advisor.RetryableError{StatusCode: 429, Message: "slow down"}},
		replies: []string{"", "ok"},
	}
	r := WithRetry(p, nil)
	r.backoff = noBackoff

	got, err := r.Complete(context.Background(), "prompt")
	if err != nil || got != "ok" {
		t.Fatalf("expected ok after retry, got %q, %v", got, err)
	}
	if p.calls() != 2 {
		t.Errorf("expected 2 calls, got %d", p.calls())
	}
	if r.Name() != "scripted" {
		t.Errorf("expected wrapped provider name, got %q", r.Name())
	}
}

func TestRetryingProvider_GivesUp(t *testing.T) {
	retryable := &advisor.RetryableError{StatusCode: 500}
	p := &scriptedProvider{errs: []error{retryable, retryable, retryable, retryable}}
	r := WithRetry(p, nil)
	r.backoff = noBackoff

	_, err := r.Complete(context.Background(), "prompt")
	if !IsRetryable(err) {
		t.Errorf("expected last retryable error, got %v", err)
	}
	if p.calls() != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, p.calls())
	}
}

func TestRetryingProvider_PermanentError(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("invalid api key")}}
	r := WithRetry(p, nil)
	r.backoff = noBackoff

	if _, err := r.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if p.calls() != 1 {
		t.Errorf("expected no retry for permanent error, got %d calls", p.calls())
	}
}

func TestRetryingProvider_ContextCancelled(t *testing.T) {
	p := &scriptedProvider{errs: []error{&advisor.RetryableError{StatusCode: 503}}}
	r := WithRetry(p, nil)
	r.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Complete(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
