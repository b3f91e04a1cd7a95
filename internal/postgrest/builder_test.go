package postgrest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func newTestBuilder(table string) *builder {
	return &builder{table: table, op: opSelect, columns: "*"}
}

func TestCompileSelect(t *testing.T) {
	b := newTestBuilder("products")
	b.Select("*").Eq("active", true).Gte("price_usd", 10).Order("price_usd", true).Range(10, 14)

	sqlText, args, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `SELECT * FROM "products" WHERE "active" = $1 AND "price_usd" >= $2 ORDER BY "price_usd" ASC LIMIT 5 OFFSET 10`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if !reflect.DeepEqual(args, []interface{}{true, 10}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileSelectColumns(t *testing.T) {
	b := newTestBuilder("users")
	b.Select("id, email")

	sqlText, _, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if want := `SELECT "id", "email" FROM "users"`; sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
}

func TestCompileInsertSortsColumns(t *testing.T) {
	b := newTestBuilder("products")
	b.Insert(Record{"sku": "FY-1", "name": "Roses", "featured": true})

	sqlText, args, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `INSERT INTO "products" ("featured", "name", "sku") VALUES ($1, $2, $3) RETURNING *`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if !reflect.DeepEqual(args, []interface{}{true, "Roses", "FY-1"}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileUpdateWithFilters(t *testing.T) {
	b := newTestBuilder("products")
	b.Update(Record{"active": false}).Eq("id", int64(7)).Eq("active", true)

	sqlText, args, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `UPDATE "products" SET "active" = $1 WHERE "id" = $2 AND "active" = $3 RETURNING *`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if !reflect.DeepEqual(args, []interface{}{false, int64(7), true}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileDelete(t *testing.T) {
	b := newTestBuilder("order_items")
	b.Delete().Eq("order_id", int64(3))

	sqlText, _, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if want := `DELETE FROM "order_items" WHERE "order_id" = $1 RETURNING *`; sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
}

func TestCompileCount(t *testing.T) {
	b := newTestBuilder("users")
	b.Select("id").Eq("role", "admin")

	sqlText, args, err := b.compile(true)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if want := `SELECT COUNT(*) FROM "users" WHERE "role" = $1`; sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"admin"}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileOrExpression(t *testing.T) {
	b := newTestBuilder("users")
	b.Select("*").Eq("active", true).Or("email.ilike.%rosa%,full_name.ilike.%rosa%")

	sqlText, args, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `SELECT * FROM "users" WHERE "active" = $1 AND ("email" ILIKE $2 OR "full_name" ILIKE $3)`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if !reflect.DeepEqual(args, []interface{}{true, "%rosa%", "%rosa%"}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileOrExpressionRejectsBadInput(t *testing.T) {
	cases := []string{
		"email",
		"email.startswith.x",
	}
	for _, expr := range cases {
		b := newTestBuilder("users")
		b.Or(expr)
		if _, _, err := b.compile(false); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

func TestCompileInList(t *testing.T) {
	b := newTestBuilder("information_schema.columns")
	b.Select("column_name").
		Eq("table_name", "products").
		In("column_name", []interface{}{"active", "deleted_at"})

	sqlText, args, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `SELECT "column_name" FROM "information_schema"."columns" WHERE "table_name" = $1 AND "column_name" IN ($2, $3)`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %#v", args)
	}
}

func TestCompileEmptyInMatchesNothing(t *testing.T) {
	b := newTestBuilder("products")
	b.Select("*").In("id", nil)

	sqlText, _, err := b.compile(false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if want := `SELECT * FROM "products" WHERE FALSE`; sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
}

func TestCompileInsertWithoutColumns(t *testing.T) {
	b := newTestBuilder("products")
	b.Insert(Record{})
	if _, _, err := b.compile(false); err == nil {
		t.Fatalf("expected error for empty insert")
	}
}

func TestQuoteIdent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"products", `"products"`},
		{"information_schema.tables", `"information_schema"."tables"`},
		{`bad"name`, `"bad""name"`},
	}
	for _, tc := range cases {
		if got := quoteIdent(tc.in); got != tc.want {
			t.Fatalf("quoteIdent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTranslateError(t *testing.T) {
	typed := &Error{Code: "23505", Message: "duplicate key"}
	if got := translateError(typed); got != typed {
		t.Fatalf("typed errors must pass through unchanged, got %#v", got)
	}

	got := translateError(pgx.ErrNoRows)
	var dbErr *Error
	if !errors.As(got, &dbErr) || dbErr.Code != CodeNoRows {
		t.Fatalf("ErrNoRows = %#v, want code %s", got, CodeNoRows)
	}

	got = translateError(&pgconn.PgError{Code: "23503", Message: "fk violation"})
	if !errors.As(got, &dbErr) || dbErr.Code != "23503" || dbErr.Message != "fk violation" {
		t.Fatalf("PgError = %#v", got)
	}

	// Dial failures and other unstructured errors collapse to a connection
	// failure code.
	for _, err := range []error{
		fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
		context.DeadlineExceeded,
	} {
		got = translateError(err)
		if !errors.As(got, &dbErr) || dbErr.Code != CodeConnFailure {
			t.Fatalf("translateError(%v) = %#v, want code %s", err, got, CodeConnFailure)
		}
	}
}
