package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit, true},
		{http.StatusRequestTimeout, ErrorTypeTimeout, true},
		{http.StatusBadGateway, ErrorTypeServer, true},
		{http.StatusUnauthorized, ErrorTypeClient, false},
		{http.StatusNotFound, ErrorTypeClient, false},
		{http.StatusNoContent, ErrorTypeValidation, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestClassifyRequestError(t *testing.T) {
	timeout := ClassifyRequestError(fmt.Errorf("get: %w", context.DeadlineExceeded))
	if timeout.Type != ErrorTypeTimeout {
		t.Errorf("Type = %q, want %q", timeout.Type, ErrorTypeTimeout)
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("timeout error does not unwrap to context.DeadlineExceeded")
	}

	canceled := ClassifyRequestError(context.Canceled)
	if canceled.Type != ErrorTypeCanceled || canceled.Retryable {
		t.Errorf("canceled = %+v, want non-retryable %q", canceled, ErrorTypeCanceled)
	}

	network := ClassifyRequestError(errors.New("connection refused"))
	if network.Type != ErrorTypeNetwork || !IsRetryable(network) {
		t.Errorf("network = %+v, want retryable %q", network, ErrorTypeNetwork)
	}

	original := NewValidationError("bad payload")
	if got := ClassifyRequestError(fmt.Errorf("wrapped: %w", original)); got != original {
		t.Errorf("ClassifyRequestError() = %v, want the original FetchError", got)
	}
}

func TestResult(t *testing.T) {
	rates := &Rates{Base: "USD", Rates: map[string]float64{"EUR": 0.9}}

	ok := Succeeded("2024-01-01", rates, "EUR")
	if !ok.OK() || ok.Value != 0.9 {
		t.Errorf("Succeeded(EUR) = %+v, want OK with 0.9", ok)
	}

	missing := Succeeded("2024-01-01", rates, "GBP")
	if !missing.OK() || !math.IsNaN(missing.Value) {
		t.Errorf("Succeeded(GBP) = %+v, want OK with NaN", missing)
	}

	failed := Failed("2024-01-01", errors.New("boom"))
	if failed.OK() || !math.IsNaN(failed.Value) {
		t.Errorf("Failed() = %+v, want failure with NaN", failed)
	}
}
