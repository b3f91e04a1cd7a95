package repository_test

import (
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/postgrest"
	"github.com/floresya/backend/internal/repository"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		code     string
		message  string
		wantKind apperror.Kind
		unmapped bool
	}{
		{"no_rows", "PGRST116", "no rows", apperror.KindNotFound, false},
		{"jwt_expired", "PGRST301", "JWT expired", apperror.KindUnauthorized, false},
		{"unique_violation", "23505", `duplicate key value violates unique constraint "products_sku_key"`, apperror.KindDatabaseConstraint, false},
		{"foreign_key", "23503", `violates foreign key constraint "order_items_product_id_fkey"`, apperror.KindConflict, false},
		{"check_violation", "23514", `violates check constraint "products_price_positive"`, apperror.KindBadRequest, false},
		{"not_null", "23502", `null value in column "name" violates not-null constraint`, apperror.KindValidation, false},
		{"privilege", "42501", "permission denied", apperror.KindForbidden, false},
		{"conn_failure", "08006", "connection failure", apperror.KindServiceUnavailable, false},
		{"conn_refused", "08001", "could not establish connection", apperror.KindServiceUnavailable, false},
		{"conn_dropped", "08003", "connection does not exist", apperror.KindServiceUnavailable, false},
		{"deadlock", "40P01", "deadlock detected", apperror.KindConflict, false},
		{"serialization", "40001", "could not serialize access", apperror.KindConflict, false},
		{"undefined_table", "42P01", `relation "widgets" does not exist`, apperror.KindDatabaseError, false},
		{"undefined_column", "42703", `column "colour" does not exist`, apperror.KindDatabaseError, false},
		{"truncation", "22001", "value too long", apperror.KindBadRequest, false},
		{"out_of_range", "22003", "numeric value out of range", apperror.KindBadRequest, false},
		{"unknown_code", "XX000", "internal error", apperror.KindDatabaseError, true},
		{"empty_code", "", "weird failure", apperror.KindDatabaseError, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := repository.MapError(&postgrest.Error{Code: tc.code, Message: tc.message}, "findAll", "products")

			if mapped.Kind != tc.wantKind {
				t.Fatalf("kind = %s, want %s", mapped.Kind, tc.wantKind)
			}
			if mapped.Unmapped != tc.unmapped {
				t.Fatalf("unmapped = %v, want %v", mapped.Unmapped, tc.unmapped)
			}
			if mapped.Context["original_code"] != tc.code {
				t.Fatalf("original code not preserved: %#v", mapped.Context)
			}
			if mapped.Context["operation"] != "findAll" || mapped.Context["table"] != "products" {
				t.Fatalf("operation/table not stamped: %#v", mapped.Context)
			}
			if mapped.Timestamp.IsZero() {
				t.Fatalf("expected a timestamp")
			}
		})
	}
}

func TestMapErrorUniqueViolationConstraint(t *testing.T) {
	mapped := repository.MapError(&postgrest.Error{
		Code:    "23505",
		Message: `duplicate key value violates unique constraint "widgets_sku_key"`,
	}, "create", "widgets")

	if mapped.Context["constraint"] != "widgets_sku_key" {
		t.Fatalf("constraint = %v", mapped.Context["constraint"])
	}
	if mapped.Context["duplicate"] != true {
		t.Fatalf("duplicate flag missing: %#v", mapped.Context)
	}
}

func TestExtractConstraintName(t *testing.T) {
	cases := []struct{ message, want string }{
		{`duplicate key value violates unique constraint "products_sku_key"`, "products_sku_key"},
		{"no quoted name here", "unknown_constraint"},
		{"", "unknown_constraint"},
	}
	for _, tc := range cases {
		if got := repository.ExtractConstraintName(tc.message); got != tc.want {
			t.Fatalf("ExtractConstraintName(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestExtractColumnName(t *testing.T) {
	cases := []struct{ message, want string }{
		{`null value in column "email" violates not-null constraint`, "email"},
		{"nothing useful", "unknown_column"},
	}
	for _, tc := range cases {
		if got := repository.ExtractColumnName(tc.message); got != tc.want {
			t.Fatalf("ExtractColumnName(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestWrapError(t *testing.T) {
	logger := zerolog.New(io.Discard)

	if err := repository.WrapError(nil, "findAll", "products", logger); err != nil {
		t.Fatalf("nil must stay nil, got %v", err)
	}

	// Already-typed errors pass through without another wrapping layer.
	typed := apperror.NotFound("products", 7)
	got := repository.WrapError(typed, "findAll", "products", logger)
	if got != typed {
		t.Fatalf("typed error was rewrapped: %v", got)
	}

	// Backend errors are mapped.
	mapped := repository.WrapError(&postgrest.Error{Code: "23505", Message: `constraint "x_key"`}, "create", "products", logger)
	if !apperror.IsKind(mapped, apperror.KindDatabaseConstraint) {
		t.Fatalf("expected constraint kind, got %v", mapped)
	}

	// Arbitrary errors become unmapped database errors.
	plain := repository.WrapError(errors.New("boom"), "update", "products", logger)
	appErr, ok := apperror.As(plain)
	if !ok || appErr.Kind != apperror.KindDatabaseError || !appErr.Unmapped {
		t.Fatalf("expected unmapped database error, got %v", plain)
	}
}
