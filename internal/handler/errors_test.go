package handler

import (
	"errors"
	"testing"
)

func TestResponseMessage(t *testing.T) {
	if got := ResponseMessage(400, `{"message":"Property values were not valid"}`); got != "Property values were not valid" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ResponseMessage(401, `{"message":"  "}`); got != "401: Unauthorized" {
		t.Fatalf("blank message should fall back, got %q", got)
	}
	if got := ResponseMessage(502, ""); got != "502: Unexpected response from server" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := error(&Error{Kind: ErrRequestFailed, Message: cause.Error(), Err: cause})
	if !errors.Is(err, ErrRequestFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected both kind and cause in chain: %v", err)
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatal("unexpected kind")
	}
	withStatus := &Error{Kind: ErrRequestFailed, StatusCode: 404, Message: "404: Page not found"}
	if withStatus.Error() != "hubspot request failed (status 404): 404: Page not found" {
		t.Fatalf("unexpected text %q", withStatus.Error())
	}
}
