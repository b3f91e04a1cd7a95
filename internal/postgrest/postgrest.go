// Package postgrest exposes a chainable query-builder client over Postgres.
// The repository layer is written against the Client/Builder interfaces only,
// so the pgx-backed implementation here and in-memory fakes are
// interchangeable. Every failure surfaces as an *Error carrying the raw
// backend code and message; classification happens above this package.
package postgrest

import "context"

// Record is an opaque row: column name to value. The repository layer has no
// static knowledge of per-table shapes; typed accessors belong to the entity
// repositories.
type Record map[string]interface{}

// Well-known error codes surfaced by this package in addition to raw
// Postgres SQLSTATE codes.
const (
	// CodeNoRows is returned when a single-row terminal found no row (or
	// more than one).
	CodeNoRows = "PGRST116"

	// CodeConnFailure is returned when the round trip failed before the
	// statement reached the server.
	CodeConnFailure = "08006"
)

// Error is the backend error pair handed to the error mapper. Code is a
// Postgres SQLSTATE or one of the codes above.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Client is the entry point of the chainable query-builder interface.
type Client interface {
	From(table string) Builder
}

// Builder accumulates one statement. Filter and modifier methods return the
// builder for chaining; Execute, Single and Count issue the round trip.
// A builder is single-use and not safe for concurrent mutation.
type Builder interface {
	Select(columns string) Builder
	Insert(record Record) Builder
	Update(record Record) Builder
	Delete() Builder

	Eq(column string, value interface{}) Builder
	Neq(column string, value interface{}) Builder
	Gt(column string, value interface{}) Builder
	Gte(column string, value interface{}) Builder
	Lt(column string, value interface{}) Builder
	Lte(column string, value interface{}) Builder
	Like(column string, pattern string) Builder
	ILike(column string, pattern string) Builder
	In(column string, values []interface{}) Builder

	// Or adds one disjunctive clause in dotted filter notation, e.g.
	// "email.ilike.%rosa%,full_name.ilike.%rosa%". All other filters stay
	// conjunctive around it.
	Or(expression string) Builder

	Order(column string, ascending bool) Builder
	Range(from, to int) Builder

	// Execute runs the statement and returns all resulting rows. Mutating
	// statements return their RETURNING set.
	Execute(ctx context.Context) ([]Record, error)

	// Single runs the statement and requires exactly one resulting row;
	// zero or multiple rows yield *Error with CodeNoRows.
	Single(ctx context.Context) (Record, error)

	// Count runs the statement as a COUNT(*) over the accumulated filters.
	Count(ctx context.Context) (int64, error)
}
