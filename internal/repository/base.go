// Package repository implements data access over the query-builder client.
// A generic Repository covers one table with uniform CRUD plus audited soft
// delete; entity repositories layer typed accessors and per-entity query
// shaping on top of it. All backend failures leave this package as typed
// application errors.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/postgrest"
)

// DefaultDeletionReason is stored when a delete carries no explicit reason.
const DefaultDeletionReason = "Not specified"

// Record is re-exported so callers above the repository never import the
// client package directly.
type Record = postgrest.Record

// AuditInfo carries the actor metadata stamped onto a soft delete.
type AuditInfo struct {
	DeletedBy *int64
	Reason    string
	IPAddress *string
}

// ListFilters is the generic filter surface of FindAll: conjunctive
// equality, one optional free-text OR clause, and the inactive-rows escape
// hatch. Entity repositories translate their own filter vocabulary into
// this.
type ListFilters struct {
	Equals             map[string]interface{}
	Search             string
	SearchColumns      []string
	IncludeDeactivated bool
}

// ListOptions controls ordering and pagination of FindAll.
type ListOptions struct {
	OrderBy   string // defaults to created_at
	Ascending bool   // defaults to false, newest first
	Limit     int    // 0 means no window
	Offset    int
}

// Repository provides uniform data access for a single table. Instances
// hold no mutable state beyond the schema cache and are safe for concurrent
// use to the extent the underlying client is.
type Repository struct {
	client postgrest.Client
	table  string
	logger zerolog.Logger
	schema *SchemaValidator
}

// New creates a repository bound to one table.
func New(client postgrest.Client, table string, logger zerolog.Logger) *Repository {
	return &Repository{
		client: client,
		table:  table,
		logger: logger.With().Str("repository", table).Logger(),
		schema: NewSchemaValidator(client, logger),
	}
}

// Table returns the bound table name.
func (r *Repository) Table() string { return r.table }

// Create inserts one record and returns the row with server-assigned fields
// populated.
func (r *Repository) Create(ctx context.Context, data Record) (Record, error) {
	record, err := r.client.From(r.table).Insert(data).Single(ctx)
	if err != nil {
		return nil, WrapError(err, "create", r.table, r.logger)
	}

	r.logger.Info().Interface("id", record["id"]).Msg("record created")
	return record, nil
}

// FindByID returns the record or nil when no matching row exists; absence is
// not an error. Inactive records are excluded unless includeInactive is set.
// Assumes the table carries an active column; entity repositories for tables
// without it must override.
func (r *Repository) FindByID(ctx context.Context, id int64, includeInactive bool) (Record, error) {
	query := r.client.From(r.table).Select("*").Eq("id", id)
	if !includeInactive {
		query = query.Eq("active", true)
	}

	record, err := query.Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "findById", r.table, r.logger)
	}
	return record, nil
}

// FindAll returns the record set matching the filters, ordered and windowed
// per options. Zero matches return an empty slice, never nil and never an
// error.
func (r *Repository) FindAll(ctx context.Context, filters ListFilters, opts ListOptions) ([]Record, error) {
	query := r.client.From(r.table).Select("*")

	for column, value := range filters.Equals {
		query = query.Eq(column, value)
	}

	if filters.Search != "" && len(filters.SearchColumns) > 0 {
		query = query.Or(searchExpression(filters.Search, filters.SearchColumns))
	}

	if !filters.IncludeDeactivated {
		query = query.Eq("active", true)
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	query = query.Order(orderBy, opts.Ascending)

	if opts.Limit > 0 {
		query = query.Range(opts.Offset, opts.Offset+opts.Limit-1)
	}

	records, err := query.Execute(ctx)
	if err != nil {
		return nil, WrapError(err, "findAll", r.table, r.logger)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Update merges data with a fresh updated_at stamp and returns the updated
// row. A missing target surfaces as a not-found error.
func (r *Repository) Update(ctx context.Context, id int64, data Record) (Record, error) {
	patch := make(Record, len(data)+1)
	for k, v := range data {
		patch[k] = v
	}
	patch["updated_at"] = time.Now().UTC()

	record, err := r.client.From(r.table).Update(patch).Eq("id", id).Single(ctx)
	if err != nil {
		return nil, WrapError(err, "update", r.table, r.logger)
	}
	return record, nil
}

// Delete soft-deletes an active record, stamping the audit envelope. The
// transition is a single conditional update, so the active precondition and
// the mutation are atomic. Deleting a missing or already-inactive record is
// a not-found error, never a silent success.
func (r *Repository) Delete(ctx context.Context, id int64, audit AuditInfo) (Record, error) {
	validation, err := r.requireSoftDeleteSchema(ctx)
	if err != nil {
		return nil, err
	}

	reason := audit.Reason
	if reason == "" {
		reason = DefaultDeletionReason
	}

	patch := Record{"active": false}
	if validation.HasColumn("deleted_at") {
		patch["deleted_at"] = time.Now().UTC()
	}
	if validation.HasColumn("deleted_by") {
		patch["deleted_by"] = nullable(audit.DeletedBy)
	}
	if validation.HasColumn("deletion_reason") {
		patch["deletion_reason"] = reason
	}
	if validation.HasColumn("deletion_ip") {
		patch["deletion_ip"] = nullable(audit.IPAddress)
	}

	record, err := r.client.From(r.table).
		Update(patch).
		Eq("id", id).
		Eq("active", true).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound(r.table, id)
		}
		return nil, WrapError(err, "delete", r.table, r.logger)
	}

	r.logger.Info().Int64("id", id).Str("reason", reason).Msg("record soft-deleted")
	return record, nil
}

// Reactivate restores a soft-deleted record, clearing the deletion audit
// fields and stamping the reactivation pair. Reactivating a record that is
// already active is a conflict: the row exists, the transition does not.
func (r *Repository) Reactivate(ctx context.Context, id int64, reactivatedBy *int64) (Record, error) {
	validation, err := r.requireSoftDeleteSchema(ctx)
	if err != nil {
		return nil, err
	}

	patch := Record{"active": true}
	if validation.HasColumn("deleted_at") {
		patch["deleted_at"] = nil
	}
	if validation.HasColumn("deleted_by") {
		patch["deleted_by"] = nil
	}
	if validation.HasColumn("deletion_reason") {
		patch["deletion_reason"] = nil
	}
	if validation.HasColumn("deletion_ip") {
		patch["deletion_ip"] = nil
	}
	if validation.HasColumn("reactivated_at") {
		patch["reactivated_at"] = time.Now().UTC()
	}
	if validation.HasColumn("reactivated_by") {
		patch["reactivated_by"] = nullable(reactivatedBy)
	}

	record, err := r.client.From(r.table).
		Update(patch).
		Eq("id", id).
		Eq("active", false).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.Conflict(r.table+" already active",
				map[string]interface{}{"table": r.table, "id": id})
		}
		return nil, WrapError(err, "reactivate", r.table, r.logger)
	}

	r.logger.Info().Int64("id", id).Msg("record reactivated")
	return record, nil
}

// Exists reports whether at least one record matches all equality criteria.
func (r *Repository) Exists(ctx context.Context, criteria map[string]interface{}) (bool, error) {
	count, err := r.Count(ctx, criteria)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of records matching all equality filters.
func (r *Repository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	query := r.client.From(r.table).Select("id")
	for column, value := range filters {
		query = query.Eq(column, value)
	}

	count, err := query.Count(ctx)
	if err != nil {
		return 0, WrapError(err, "count", r.table, r.logger)
	}
	return count, nil
}

// ValidateSoftDeleteSchema verifies the table can take soft-delete
// operations, returning the full validation report. A missing table or a
// missing active column is fatal; an incomplete audit column set only logs a
// warning with remediation recommendations.
func (r *Repository) ValidateSoftDeleteSchema(ctx context.Context) (*SoftDeleteValidation, error) {
	return r.requireSoftDeleteSchema(ctx)
}

// HasSoftDeleteSupport is the non-throwing probe for callers that want to
// branch without error handling.
func (r *Repository) HasSoftDeleteSupport(ctx context.Context) bool {
	validation, err := r.schema.Validate(ctx, r.table)
	if err != nil {
		r.logger.Warn().Err(err).Msg("soft delete support check failed")
		return false
	}
	return validation.CanPerformSoftDelete
}

func (r *Repository) requireSoftDeleteSchema(ctx context.Context) (*SoftDeleteValidation, error) {
	validation, err := r.schema.Validate(ctx, r.table)
	if err != nil {
		return nil, err
	}

	if !validation.TableExists {
		return nil, apperror.New(apperror.KindDatabaseError, "SCHEMA_VALIDATION",
			"table "+r.table+" does not exist",
			map[string]interface{}{"table": r.table})
	}

	if !validation.CanPerformSoftDelete {
		return nil, apperror.New(apperror.KindDatabaseError, "SCHEMA_VALIDATION",
			"table "+r.table+" does not support soft delete",
			map[string]interface{}{
				"table":           r.table,
				"missing_columns": validation.MissingColumns,
			})
	}

	if !validation.HasFullAuditSupport || !validation.HasReactivationSupport {
		r.logger.Warn().
			Str("table", r.table).
			Strs("missing_columns", validation.MissingColumns).
			Strs("recommendations", validation.Recommendations).
			Msg("incomplete audit support, soft delete degrades to available columns")
	}

	return validation, nil
}

func isNoRows(err error) bool {
	var dbErr *postgrest.Error
	return errors.As(err, &dbErr) && dbErr.Code == postgrest.CodeNoRows
}

// searchExpression builds a dotted or() filter matching the term against the
// given columns. Commas separate branches of the dotted notation, so they are
// replaced with spaces to keep user input from corrupting the expression.
func searchExpression(term string, columns []string) string {
	pattern := "%" + strings.ReplaceAll(term, ",", " ") + "%"
	expr := ""
	for i, col := range columns {
		if i > 0 {
			expr += ","
		}
		expr += col + ".ilike." + pattern
	}
	return expr
}

// nullable converts a typed nil pointer into an untyped nil so the client
// writes SQL NULL instead of a typed zero.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
