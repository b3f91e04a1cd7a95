package postgrest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryClient is an in-memory Client used by tests above this package. It
// keeps rows per table, answers information_schema probes from its table
// metadata, and supports the same filter surface the pgx client compiles to
// SQL.
type MemoryClient struct {
	mu     sync.Mutex
	tables map[string]*memoryTable
	nextID int64

	failNext *Error
}

type memoryTable struct {
	columns map[string]bool
	rows    []Record
}

// NewMemoryClient creates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables: make(map[string]*memoryTable),
		nextID: 1,
	}
}

// AddTable registers a table and its column set. The column set is what
// information_schema probes report.
func (c *MemoryClient) AddTable(name string, columns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &memoryTable{columns: make(map[string]bool, len(columns))}
	for _, col := range columns {
		t.columns[col] = true
	}
	c.tables[name] = t
}

// Seed inserts rows directly, assigning ids to rows that lack one.
func (c *MemoryClient) Seed(table string, rows ...Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tables[table]
	if t == nil {
		panic("memory client: seed into unknown table " + table)
	}
	for _, row := range rows {
		copied := cloneRecord(row)
		if _, ok := copied["id"]; !ok {
			copied["id"] = c.nextID
			c.nextID++
		} else if id, ok := copied["id"].(int64); ok && id >= c.nextID {
			c.nextID = id + 1
		}
		t.rows = append(t.rows, copied)
	}
}

// Rows returns a snapshot of a table's rows, in insertion order.
func (c *MemoryClient) Rows(table string) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tables[table]
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.rows))
	for i, row := range t.rows {
		out[i] = cloneRecord(row)
	}
	return out
}

// FailNext makes the next round trip fail with the given error.
func (c *MemoryClient) FailNext(err *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = err
}

func (c *MemoryClient) From(table string) Builder {
	return &memoryBuilder{client: c, table: table, op: opSelect}
}

type memoryBuilder struct {
	client *MemoryClient
	table  string

	op     operation
	record Record

	eqFilters []filter
	inColumn  string
	inValues  []interface{}
	orExprs   []string

	orderCol string
	orderAsc bool

	hasRange  bool
	rangeFrom int
	rangeTo   int
}

func (b *memoryBuilder) Select(string) Builder { return b }

func (b *memoryBuilder) Insert(record Record) Builder {
	b.op = opInsert
	b.record = record
	return b
}

func (b *memoryBuilder) Update(record Record) Builder {
	b.op = opUpdate
	b.record = record
	return b
}

func (b *memoryBuilder) Delete() Builder {
	b.op = opDelete
	return b
}

func (b *memoryBuilder) addFilter(column, op string, value interface{}) Builder {
	b.eqFilters = append(b.eqFilters, filter{column: column, op: op, value: value})
	return b
}

func (b *memoryBuilder) Eq(column string, value interface{}) Builder {
	return b.addFilter(column, "eq", value)
}
func (b *memoryBuilder) Neq(column string, value interface{}) Builder {
	return b.addFilter(column, "neq", value)
}
func (b *memoryBuilder) Gt(column string, value interface{}) Builder {
	return b.addFilter(column, "gt", value)
}
func (b *memoryBuilder) Gte(column string, value interface{}) Builder {
	return b.addFilter(column, "gte", value)
}
func (b *memoryBuilder) Lt(column string, value interface{}) Builder {
	return b.addFilter(column, "lt", value)
}
func (b *memoryBuilder) Lte(column string, value interface{}) Builder {
	return b.addFilter(column, "lte", value)
}
func (b *memoryBuilder) Like(column string, pattern string) Builder {
	return b.addFilter(column, "like", pattern)
}
func (b *memoryBuilder) ILike(column string, pattern string) Builder {
	return b.addFilter(column, "ilike", pattern)
}

func (b *memoryBuilder) In(column string, values []interface{}) Builder {
	b.inColumn = column
	b.inValues = values
	return b
}

func (b *memoryBuilder) Or(expression string) Builder {
	if expression != "" {
		b.orExprs = append(b.orExprs, expression)
	}
	return b
}

func (b *memoryBuilder) Order(column string, ascending bool) Builder {
	b.orderCol = column
	b.orderAsc = ascending
	return b
}

func (b *memoryBuilder) Range(from, to int) Builder {
	b.hasRange = true
	b.rangeFrom = from
	b.rangeTo = to
	return b
}

func (b *memoryBuilder) Execute(ctx context.Context) ([]Record, error) {
	c := b.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return nil, err
	}

	switch b.table {
	case "information_schema.tables":
		return b.schemaTables(c), nil
	case "information_schema.columns":
		return b.schemaColumns(c), nil
	}

	t := c.tables[b.table]
	if t == nil {
		return nil, &Error{Code: "42P01", Message: `relation "` + b.table + `" does not exist`}
	}

	switch b.op {
	case opInsert:
		row := cloneRecord(b.record)
		if _, ok := row["id"]; !ok {
			row["id"] = c.nextID
			c.nextID++
		}
		// Column defaults a real schema would apply.
		if t.columns["active"] {
			if _, ok := row["active"]; !ok {
				row["active"] = true
			}
		}
		if t.columns["created_at"] {
			if _, ok := row["created_at"]; !ok {
				row["created_at"] = time.Now().UTC()
			}
		}
		t.rows = append(t.rows, row)
		return []Record{cloneRecord(row)}, nil

	case opUpdate:
		updated := []Record{}
		for _, row := range t.rows {
			if b.matches(row) {
				for k, v := range b.record {
					row[k] = v
				}
				updated = append(updated, cloneRecord(row))
			}
		}
		return updated, nil

	case opDelete:
		kept := t.rows[:0]
		deleted := []Record{}
		for _, row := range t.rows {
			if b.matches(row) {
				deleted = append(deleted, cloneRecord(row))
			} else {
				kept = append(kept, row)
			}
		}
		t.rows = kept
		return deleted, nil
	}

	matched := []Record{}
	for _, row := range t.rows {
		if b.matches(row) {
			matched = append(matched, cloneRecord(row))
		}
	}

	if b.orderCol != "" {
		col, asc := b.orderCol, b.orderAsc
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(matched[i][col], matched[j][col])
			if asc {
				return less
			}
			return lessValue(matched[j][col], matched[i][col])
		})
	}

	if b.hasRange {
		if b.rangeFrom >= len(matched) {
			return []Record{}, nil
		}
		end := b.rangeTo + 1
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[b.rangeFrom:end]
	}

	return matched, nil
}

func (b *memoryBuilder) Single(ctx context.Context) (Record, error) {
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

func (b *memoryBuilder) Count(ctx context.Context) (int64, error) {
	records, err := b.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

func (b *memoryBuilder) schemaTables(c *MemoryClient) []Record {
	name := b.filterValue("table_name")
	if name == nil {
		rows := []Record{}
		for table := range c.tables {
			rows = append(rows, Record{"table_name": table})
		}
		return rows
	}
	if _, ok := c.tables[fmt.Sprint(name)]; ok {
		return []Record{{"table_name": name}}
	}
	return []Record{}
}

func (b *memoryBuilder) schemaColumns(c *MemoryClient) []Record {
	name := b.filterValue("table_name")
	t := c.tables[fmt.Sprint(name)]
	if t == nil {
		return []Record{}
	}

	wanted := map[string]bool{}
	if b.inColumn == "column_name" {
		for _, v := range b.inValues {
			wanted[fmt.Sprint(v)] = true
		}
	}

	rows := []Record{}
	for col := range t.columns {
		if len(wanted) > 0 && !wanted[col] {
			continue
		}
		rows = append(rows, Record{"column_name": col})
	}
	return rows
}

func (b *memoryBuilder) filterValue(column string) interface{} {
	for _, f := range b.eqFilters {
		if f.column == column && f.op == "eq" {
			return f.value
		}
	}
	return nil
}

func (b *memoryBuilder) matches(row Record) bool {
	for _, f := range b.eqFilters {
		if !matchFilter(row[f.column], f.op, f.value) {
			return false
		}
	}
	if b.inColumn != "" {
		hit := false
		for _, v := range b.inValues {
			if equalValue(row[b.inColumn], v) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, expr := range b.orExprs {
		if !matchOrExpression(row, expr) {
			return false
		}
	}
	return true
}

// matchOrExpression evaluates dotted filter notation against a row: the
// expression holds when any of its comma-separated terms does.
func matchOrExpression(row Record, expression string) bool {
	for _, part := range strings.Split(expression, ",") {
		segments := strings.SplitN(strings.TrimSpace(part), ".", 3)
		if len(segments) != 3 {
			continue
		}
		if matchFilter(row[segments[0]], segments[1], segments[2]) {
			return true
		}
	}
	return false
}

func matchFilter(have interface{}, op string, want interface{}) bool {
	switch op {
	case "eq":
		return equalValue(have, want)
	case "neq":
		return !equalValue(have, want)
	case "gt":
		return lessValue(want, have)
	case "gte":
		return !lessValue(have, want)
	case "lt":
		return lessValue(have, want)
	case "lte":
		return !lessValue(want, have)
	case "like", "ilike":
		s, ok := have.(string)
		if !ok {
			return false
		}
		pattern := fmt.Sprint(want)
		needle := strings.Trim(pattern, "%")
		if op == "ilike" {
			return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
		}
		return strings.Contains(s, needle)
	}
	return false
}

func equalValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, aok := asFloat(a); aok {
		if fb, bok := asFloat(b); bok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func lessValue(a, b interface{}) bool {
	if fa, aok := asFloat(a); aok {
		if fb, bok := asFloat(b); bok {
			return fa < fb
		}
	}
	if ta, aok := a.(time.Time); aok {
		if tb, bok := b.(time.Time); bok {
			return ta.Before(tb)
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
