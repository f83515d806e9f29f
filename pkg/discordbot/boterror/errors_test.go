package boterror

import (
	"errors"
	"testing"
)

func TestWrapErrorPreservesUnwrap(t *testing.T) {
	original := errors.New("dial failed")
	wrapped := WrapError(original, CodeTransport)

	if wrapped.Code != CodeTransport {
		t.Fatalf("expected code %s, got %s", CodeTransport, wrapped.Code)
	}
	if !errors.Is(wrapped, original) {
		t.Fatal("expected errors.Is to find the wrapped original error")
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError(nil, CodeTransport) != nil {
		t.Fatal("expected WrapError(nil, ...) to return nil")
	}
}

func TestIsRetryableError(t *testing.T) {
	if !IsRetryableError(NewTransportError("timeout")) {
		t.Fatal("transport errors should be retryable")
	}
	if IsRetryableError(NewSessionError("invalid session")) {
		t.Fatal("session errors should not be retryable")
	}
	if IsRetryableError(nil) {
		t.Fatal("nil error should not be retryable")
	}
}

func TestIsCriticalError(t *testing.T) {
	if !IsCriticalError(NewSessionError("invalid session")) {
		t.Fatal("session errors should be critical")
	}
	if IsCriticalError(NewTransportError("timeout")) {
		t.Fatal("transport errors should not be critical")
	}
}

func TestAddDetail(t *testing.T) {
	err := NewCodecError("opus encode failed").AddDetail("frame", 17)
	if err.Details["frame"] != 17 {
		t.Fatalf("expected detail to be set, got %+v", err.Details)
	}
}
