package generation

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// FailureKind classifies why a call failed.
type FailureKind int

// Failure kinds
const (
	// KindNone means the call succeeded.
	KindNone FailureKind = iota
	// KindCapacityExhausted is a rate-limit or quota rejection.
	KindCapacityExhausted
	// KindNetwork is a timeout or dropped connection.
	KindNetwork
	// KindContentBlocked is a safety-filter refusal.
	KindContentBlocked
	// KindRequestFailed is any other failure.
	KindRequestFailed
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCapacityExhausted:
		return "capacity_exhausted"
	case KindNetwork:
		return "network"
	case KindContentBlocked:
		return "content_blocked"
	default:
		return "request_failed"
	}
}

const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// Classify inspects err and returns its failure kind. Capacity exhaustion is
// detected from the status code, the status string, or the message text,
// because the remote service is not consistent about which one it sets.
func Classify(err error) FailureKind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, ErrCapacityExhausted) {
		return KindCapacityExhausted
	}
	if errors.Is(err, ErrContentBlocked) {
		return KindContentBlocked
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Code == http.StatusTooManyRequests || strings.EqualFold(remote.Status, statusResourceExhausted) {
			return KindCapacityExhausted
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, statusResourceExhausted) {
		return KindCapacityExhausted
	}

	if isNetworkError(err) {
		return KindNetwork
	}

	return KindRequestFailed
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// CapacityOnly retries only capacity-exhaustion failures.
func CapacityOnly(err error) bool {
	return Classify(err) == KindCapacityExhausted
}

// CapacityAndNetwork also retries timeouts and dropped connections.
func CapacityAndNetwork(err error) bool {
	kind := Classify(err)
	return kind == KindCapacityExhausted || kind == KindNetwork
}

// RetryPolicy controls how the Gateway retries a logical call.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// Multiplier scales the delay after every retry.
	Multiplier float64
	// Retryable decides whether a failed attempt may be retried.
	Retryable func(error) bool
}

// DefaultRetryPolicy is three attempts, 1s then 2s, capacity errors only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
		Retryable:    CapacityOnly,
	}
}

// normalized fills zero or invalid fields with defaults.
func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Retryable == nil {
		p.Retryable = def.Retryable
	}
	return p
}

// Delay returns the wait before retry number retry (0-based): InitialDelay *
// Multiplier^retry. There is no jitter.
func (p RetryPolicy) Delay(retry int) time.Duration {
	p = p.normalized()
	if retry < 0 {
		retry = 0
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(retry)))
}
