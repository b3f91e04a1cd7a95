package postgrest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the slice of pgx the client needs. *pgxpool.Pool satisfies it;
// pooling and connection lifecycle stay in pgx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type operation int

const (
	opSelect operation = iota
	opInsert
	opUpdate
	opDelete
)

// pgxClient implements Client on top of a pgx Querier.
type pgxClient struct {
	db Querier
}

// NewClient creates a pgx-backed query-builder client.
func NewClient(db Querier) Client {
	return &pgxClient{db: db}
}

func (c *pgxClient) From(table string) Builder {
	return &builder{
		db:      c.db,
		table:   table,
		op:      opSelect,
		columns: "*",
	}
}

type filter struct {
	column string
	op     string
	value  interface{}
	values []interface{}
}

type builder struct {
	db    Querier
	table string

	op      operation
	columns string
	record  Record

	filters   []filter
	orClauses []string

	orderCol string
	orderAsc bool

	hasRange  bool
	rangeFrom int
	rangeTo   int
}

func (b *builder) Select(columns string) Builder {
	if columns != "" {
		b.columns = columns
	}
	return b
}

func (b *builder) Insert(record Record) Builder {
	b.op = opInsert
	b.record = record
	return b
}

func (b *builder) Update(record Record) Builder {
	b.op = opUpdate
	b.record = record
	return b
}

func (b *builder) Delete() Builder {
	b.op = opDelete
	return b
}

func (b *builder) addFilter(column, op string, value interface{}) Builder {
	b.filters = append(b.filters, filter{column: column, op: op, value: value})
	return b
}

func (b *builder) Eq(column string, value interface{}) Builder  { return b.addFilter(column, "=", value) }
func (b *builder) Neq(column string, value interface{}) Builder { return b.addFilter(column, "<>", value) }
func (b *builder) Gt(column string, value interface{}) Builder  { return b.addFilter(column, ">", value) }
func (b *builder) Gte(column string, value interface{}) Builder { return b.addFilter(column, ">=", value) }
func (b *builder) Lt(column string, value interface{}) Builder  { return b.addFilter(column, "<", value) }
func (b *builder) Lte(column string, value interface{}) Builder { return b.addFilter(column, "<=", value) }

func (b *builder) Like(column string, pattern string) Builder {
	return b.addFilter(column, "LIKE", pattern)
}

func (b *builder) ILike(column string, pattern string) Builder {
	return b.addFilter(column, "ILIKE", pattern)
}

func (b *builder) In(column string, values []interface{}) Builder {
	b.filters = append(b.filters, filter{column: column, op: "IN", values: values})
	return b
}

func (b *builder) Or(expression string) Builder {
	if expression != "" {
		b.orClauses = append(b.orClauses, expression)
	}
	return b
}

func (b *builder) Order(column string, ascending bool) Builder {
	b.orderCol = column
	b.orderAsc = ascending
	return b
}

func (b *builder) Range(from, to int) Builder {
	b.hasRange = true
	b.rangeFrom = from
	b.rangeTo = to
	return b
}

func (b *builder) Execute(ctx context.Context) ([]Record, error) {
	sqlText, args, err := b.compile(false)
	if err != nil {
		return nil, err
	}
	return b.query(ctx, sqlText, args)
}

func (b *builder) Single(ctx context.Context) (Record, error) {
	records, err := b.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, &Error{
			Code:    CodeNoRows,
			Message: fmt.Sprintf("expected a single row, got %d", len(records)),
		}
	}
	return records[0], nil
}

func (b *builder) Count(ctx context.Context) (int64, error) {
	sqlText, args, err := b.compile(true)
	if err != nil {
		return 0, err
	}

	rows, err := b.db.Query(ctx, sqlText, args...)
	if err != nil {
		return 0, translateError(err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, translateError(err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (b *builder) query(ctx context.Context, sqlText string, args []interface{}) ([]Record, error) {
	rows, err := b.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := []Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, translateError(err)
		}
		record := make(Record, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return records, nil
}

// compile renders the accumulated statement to SQL text plus positional
// arguments. countOnly replaces the projection with COUNT(*).
func (b *builder) compile(countOnly bool) (string, []interface{}, error) {
	var sb strings.Builder
	args := []interface{}{}

	switch b.op {
	case opSelect:
		if countOnly {
			sb.WriteString("SELECT COUNT(*) FROM ")
		} else {
			sb.WriteString("SELECT ")
			sb.WriteString(projection(b.columns))
			sb.WriteString(" FROM ")
		}
		sb.WriteString(quoteIdent(b.table))

	case opInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(quoteIdent(b.table))
		cols := sortedColumns(b.record)
		if len(cols) == 0 {
			return "", nil, &Error{Code: "42601", Message: "insert requires at least one column"}
		}
		quoted := make([]string, len(cols))
		placeholders := make([]string, len(cols))
		for i, col := range cols {
			quoted[i] = quoteIdent(col)
			args = append(args, b.record[col])
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		sb.WriteString(" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ") RETURNING *")
		return sb.String(), args, nil

	case opUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(quoteIdent(b.table))
		cols := sortedColumns(b.record)
		if len(cols) == 0 {
			return "", nil, &Error{Code: "42601", Message: "update requires at least one column"}
		}
		assignments := make([]string, len(cols))
		for i, col := range cols {
			args = append(args, b.record[col])
			assignments[i] = fmt.Sprintf("%s = $%d", quoteIdent(col), len(args))
		}
		sb.WriteString(" SET " + strings.Join(assignments, ", "))

	case opDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(quoteIdent(b.table))
	}

	where, whereArgs, err := b.compileWhere(len(args))
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)
	sb.WriteString(where)

	if b.op == opUpdate || b.op == opDelete {
		sb.WriteString(" RETURNING *")
		return sb.String(), args, nil
	}

	if countOnly {
		return sb.String(), args, nil
	}

	if b.orderCol != "" {
		direction := "DESC"
		if b.orderAsc {
			direction = "ASC"
		}
		sb.WriteString(" ORDER BY " + quoteIdent(b.orderCol) + " " + direction)
	}
	if b.hasRange {
		sb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", b.rangeTo-b.rangeFrom+1, b.rangeFrom))
	}

	return sb.String(), args, nil
}

func (b *builder) compileWhere(argOffset int) (string, []interface{}, error) {
	if len(b.filters) == 0 && len(b.orClauses) == 0 {
		return "", nil, nil
	}

	args := []interface{}{}
	next := func() int { return argOffset + len(args) + 1 }
	clauses := []string{}

	for _, f := range b.filters {
		if f.op == "IN" {
			if len(f.values) == 0 {
				// An empty IN list matches nothing.
				clauses = append(clauses, "FALSE")
				continue
			}
			placeholders := make([]string, len(f.values))
			for i, v := range f.values {
				args = append(args, v)
				placeholders[i] = fmt.Sprintf("$%d", argOffset+len(args))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", quoteIdent(f.column), strings.Join(placeholders, ", ")))
			continue
		}
		placeholder := fmt.Sprintf("$%d", next())
		args = append(args, f.value)
		clauses = append(clauses, fmt.Sprintf("%s %s %s", quoteIdent(f.column), f.op, placeholder))
	}

	for _, expr := range b.orClauses {
		clause, orArgs, err := compileOrExpression(expr, argOffset+len(args))
		if err != nil {
			return "", nil, err
		}
		args = append(args, orArgs...)
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// compileOrExpression parses dotted filter notation
// ("col.op.value,col.op.value") into a parenthesized OR clause.
func compileOrExpression(expression string, argOffset int) (string, []interface{}, error) {
	parts := strings.Split(expression, ",")
	args := []interface{}{}
	terms := make([]string, 0, len(parts))

	for _, part := range parts {
		segments := strings.SplitN(strings.TrimSpace(part), ".", 3)
		if len(segments) != 3 {
			return "", nil, &Error{Code: "42601", Message: "malformed or() filter: " + part}
		}
		column, op, value := segments[0], segments[1], segments[2]

		var sqlOp string
		switch op {
		case "eq":
			sqlOp = "="
		case "neq":
			sqlOp = "<>"
		case "gt":
			sqlOp = ">"
		case "gte":
			sqlOp = ">="
		case "lt":
			sqlOp = "<"
		case "lte":
			sqlOp = "<="
		case "like":
			sqlOp = "LIKE"
		case "ilike":
			sqlOp = "ILIKE"
		default:
			return "", nil, &Error{Code: "42601", Message: "unsupported or() operator: " + op}
		}

		args = append(args, value)
		terms = append(terms, fmt.Sprintf("%s %s $%d", quoteIdent(column), sqlOp, argOffset+len(args)))
	}

	return "(" + strings.Join(terms, " OR ") + ")", args, nil
}

func sortedColumns(record Record) []string {
	cols := make([]string, 0, len(record))
	for col := range record {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func projection(columns string) string {
	if columns == "*" {
		return "*"
	}
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = quoteIdent(strings.TrimSpace(p))
	}
	return strings.Join(parts, ", ")
}

// quoteIdent quotes a possibly schema-qualified identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// translateError normalizes pgx failures into *Error so the layers above
// only ever see the {code, message} pair.
func translateError(err error) error {
	var qbErr *Error
	if errors.As(err, &qbErr) {
		return qbErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Code: pgErr.Code, Message: pgErr.Message}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Code: CodeNoRows, Message: "no rows in result set"}
	}

	// Dial failures, context cancellation and anything else pgx surfaces
	// without a SQLSTATE all collapse to a connection failure.
	return &Error{Code: CodeConnFailure, Message: err.Error()}
}
