package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", UnauthenticatedError(nil, "no session"), http.StatusUnauthorized},
		{"not authorized", NotAuthorizedError(nil, "denied", "admin"), http.StatusForbidden},
		{"verification failed", VerificationFailedError(nil, "rejected"), http.StatusForbidden},
		{"malformed challenge", MalformedChallengeError(nil, "no salt"), http.StatusBadGateway},
		{"reverted", RevertedError(nil, "reverted"), http.StatusUnprocessableEntity},
		{"transaction timeout", TransactionTimeoutError(nil, "not mined"), http.StatusGatewayTimeout},
		{"index timeout", IndexTimeoutError(nil, "not indexed"), http.StatusGatewayTimeout},
		{"unavailable", UnavailableError(nil, "down"), http.StatusServiceUnavailable},
		{"bad request", BadRequestError(nil, "bad"), http.StatusBadRequest},
		{"general", GeneralError(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svcErr *ServiceError
			if !errors.As(tt.err, &svcErr) {
				t.Fatalf("%T is not a ServiceError", tt.err)
			}
			if got := svcErr.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := NotAuthorizedError(nil, "denied", "admin")

	if !Is(err, CategoryNotAuthorized) {
		t.Error("Is() should match the error's category")
	}
	if Is(err, CategoryUnauthenticated) {
		t.Error("Is() should not match a different category")
	}
	if Is(errors.New("plain"), CategoryGeneralError) {
		t.Error("Is() should not match a plain error")
	}
	if Is(nil, CategoryGeneralError) {
		t.Error("Is(nil) should be false")
	}

	// category survives wrapping
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, CategoryNotAuthorized) {
		t.Error("Is() should unwrap to find the category")
	}
}

func TestTimeoutCategoriesAreDistinct(t *testing.T) {
	reverted := RevertedError(nil, "reverted")
	mined := TransactionTimeoutError(nil, "not mined")
	indexed := IndexTimeoutError(nil, "not indexed")

	if Is(mined, CategoryTransactionReverted) || Is(reverted, CategoryTransactionTimeout) {
		t.Error("revert and mining timeout must not share a category")
	}
	if Is(mined, CategoryIndexTimeout) || Is(indexed, CategoryTransactionTimeout) {
		t.Error("mining timeout and index timeout must not share a category")
	}
}

func TestWithMeta(t *testing.T) {
	err := RevertedError(nil, "reverted").
		WithMeta("tx_hash", "0xabc").
		WithMeta("block_number", uint64(7))

	meta := Meta(err)
	if meta["tx_hash"] != "0xabc" {
		t.Errorf("tx_hash meta = %v", meta["tx_hash"])
	}
	if meta["block_number"] != uint64(7) {
		t.Errorf("block_number meta = %v", meta["block_number"])
	}

	if Meta(errors.New("plain")) != nil {
		t.Error("Meta() on a plain error should be nil")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		UnavailableError(nil, "down"),
		TransactionTimeoutError(nil, "not mined"),
		IndexTimeoutError(nil, "not indexed"),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Errorf("IsRetryable(%v) = false, want true", err)
		}
	}

	terminal := []error{
		NotAuthorizedError(nil, "denied", "admin"),
		VerificationFailedError(nil, "rejected"),
		MalformedChallengeError(nil, "no salt"),
		RevertedError(nil, "reverted"),
		BadRequestError(nil, "bad"),
		errors.New("plain"),
	}
	for _, err := range terminal {
		if IsRetryable(err) {
			t.Errorf("IsRetryable(%v) = true, want false", err)
		}
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := UnavailableError(cause, "down")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestGeneralError_HidesInternalDetail(t *testing.T) {
	cause := errors.New("pq: password authentication failed for user gateway")
	err := GeneralError(cause)

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatal("not a ServiceError")
	}
	if svcErr.Message != "Internal Server Error" {
		t.Errorf("user-facing message = %q, internal detail must not leak", svcErr.Message)
	}
}
