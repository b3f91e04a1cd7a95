package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/floresya/backend/internal/apperror"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindDatabaseConstraint, http.StatusConflict},
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindBadRequest, http.StatusBadRequest},
		{apperror.KindUnauthorized, http.StatusUnauthorized},
		{apperror.KindForbidden, http.StatusForbidden},
		{apperror.KindServiceUnavailable, http.StatusServiceUnavailable},
		{apperror.KindDatabaseError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := apperror.New(tc.kind, "X", "x", nil)
			if got := err.HTTPStatus(); got != tc.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := apperror.NotFound("products", 7)

	if !errors.Is(err, apperror.New(apperror.KindNotFound, "", "", nil)) {
		t.Fatalf("expected kind match regardless of message")
	}
	if errors.Is(err, apperror.New(apperror.KindConflict, "", "", nil)) {
		t.Fatalf("kinds must not cross-match")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := apperror.ServiceUnavailable("database", nil).WithCause(cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in the unwrap chain")
	}
	if want := fmt.Sprintf("service database is currently unavailable: %s", cause); err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWithContextMerges(t *testing.T) {
	err := apperror.Conflict("taken", map[string]interface{}{"sku": "FY-1"})
	err.WithContext(map[string]interface{}{"table": "products"})

	if err.Context["sku"] != "FY-1" || err.Context["table"] != "products" {
		t.Fatalf("context not merged: %#v", err.Context)
	}
}

func TestConstructorShapes(t *testing.T) {
	nf := apperror.NotFound("users", 42)
	if nf.Kind != apperror.KindNotFound || nf.Code != "RESOURCE_NOT_FOUND" {
		t.Fatalf("unexpected not-found shape: %#v", nf)
	}
	if nf.Message != "users with ID 42 not found" {
		t.Fatalf("unexpected message: %q", nf.Message)
	}
	if nf.Timestamp.IsZero() {
		t.Fatalf("expected a timestamp")
	}

	dc := apperror.DatabaseConstraint("products_sku_key", "products")
	if dc.Context["constraint"] != "products_sku_key" {
		t.Fatalf("constraint missing from context: %#v", dc.Context)
	}

	v := apperror.Validation("required field missing: email", "email")
	if v.Context["field"] != "email" {
		t.Fatalf("field missing from context: %#v", v.Context)
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apperror.Forbidden(""))
	if !apperror.IsKind(err, apperror.KindForbidden) {
		t.Fatalf("expected forbidden through the wrap chain")
	}
	if apperror.IsKind(errors.New("plain"), apperror.KindForbidden) {
		t.Fatalf("plain errors have no kind")
	}
}
