package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/postgrest"
)

// Column sets the soft-delete convention expects on a table. Only
// requiredColumns are mandatory; the audit and reactivation sets degrade to
// a warning when absent.
var (
	requiredColumns     = []string{"active"}
	auditColumns        = []string{"deleted_at", "deleted_by", "deletion_reason", "deletion_ip"}
	reactivationColumns = []string{"reactivated_at", "reactivated_by"}
)

// SoftDeleteValidation describes how well a table supports the soft-delete
// convention.
type SoftDeleteValidation struct {
	Table                  string   `json:"table"`
	TableExists            bool     `json:"table_exists"`
	HasBasicSoftDelete     bool     `json:"has_basic_soft_delete"`
	HasFullAuditSupport    bool     `json:"has_full_audit_support"`
	HasReactivationSupport bool     `json:"has_reactivation_support"`
	CanPerformSoftDelete   bool     `json:"can_perform_soft_delete"`
	ExistingColumns        []string `json:"existing_columns"`
	MissingColumns         []string `json:"missing_columns"`
	Recommendations        []string `json:"recommendations,omitempty"`
}

// HasColumn reports whether the probed table carries the given column.
func (v *SoftDeleteValidation) HasColumn(name string) bool {
	for _, col := range v.ExistingColumns {
		if col == name {
			return true
		}
	}
	return false
}

// SchemaValidator probes information_schema for soft-delete support. Results
// are cached per table; schema changes at runtime require Invalidate.
type SchemaValidator struct {
	client postgrest.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*SoftDeleteValidation
}

// NewSchemaValidator creates a schema validator over the given client.
func NewSchemaValidator(client postgrest.Client, logger zerolog.Logger) *SchemaValidator {
	return &SchemaValidator{
		client: client,
		logger: logger.With().Str("component", "schema_validator").Logger(),
		cache:  make(map[string]*SoftDeleteValidation),
	}
}

// Validate returns the soft-delete validation for a table, probing
// information_schema on first use.
func (s *SchemaValidator) Validate(ctx context.Context, table string) (*SoftDeleteValidation, error) {
	s.mu.RLock()
	cached, ok := s.cache[table]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	validation, err := s.probe(ctx, table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[table] = validation
	s.mu.Unlock()

	s.logger.Debug().
		Str("table", table).
		Bool("can_soft_delete", validation.CanPerformSoftDelete).
		Bool("full_audit", validation.HasFullAuditSupport).
		Msg("schema validated")

	return validation, nil
}

// Invalidate drops the cached validation for a table.
func (s *SchemaValidator) Invalidate(table string) {
	s.mu.Lock()
	delete(s.cache, table)
	s.mu.Unlock()
}

func (s *SchemaValidator) probe(ctx context.Context, table string) (*SoftDeleteValidation, error) {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, err
	}

	validation := &SoftDeleteValidation{
		Table:           table,
		TableExists:     exists,
		ExistingColumns: []string{},
		MissingColumns:  []string{},
	}
	if !exists {
		validation.MissingColumns = allExpectedColumns()
		return validation, nil
	}

	expected := allExpectedColumns()
	expectedValues := make([]interface{}, len(expected))
	for i, col := range expected {
		expectedValues[i] = col
	}

	rows, err := s.client.From("information_schema.columns").
		Select("column_name").
		Eq("table_schema", "public").
		Eq("table_name", table).
		In("column_name", expectedValues).
		Execute(ctx)
	if err != nil {
		return nil, s.probeError(err, table)
	}

	existing := map[string]bool{}
	for _, row := range rows {
		if name, ok := row["column_name"].(string); ok {
			existing[name] = true
			validation.ExistingColumns = append(validation.ExistingColumns, name)
		}
	}

	for _, col := range expected {
		if !existing[col] {
			validation.MissingColumns = append(validation.MissingColumns, col)
		}
	}

	validation.HasBasicSoftDelete = containsAll(existing, requiredColumns)
	validation.HasFullAuditSupport = containsAll(existing, auditColumns)
	validation.HasReactivationSupport = containsAll(existing, reactivationColumns)
	validation.CanPerformSoftDelete = validation.HasBasicSoftDelete
	validation.Recommendations = buildRecommendations(validation)

	return validation, nil
}

func (s *SchemaValidator) tableExists(ctx context.Context, table string) (bool, error) {
	_, err := s.client.From("information_schema.tables").
		Select("table_name").
		Eq("table_schema", "public").
		Eq("table_name", table).
		Single(ctx)
	if err != nil {
		var dbErr *postgrest.Error
		if errors.As(err, &dbErr) && dbErr.Code == postgrest.CodeNoRows {
			return false, nil
		}
		return false, s.probeError(err, table)
	}
	return true, nil
}

func (s *SchemaValidator) probeError(err error, table string) error {
	s.logger.Error().Err(err).Str("table", table).Msg("schema probe failed")
	return apperror.New(apperror.KindDatabaseError, "SCHEMA_VALIDATION",
		"schema validation failed for table "+table,
		map[string]interface{}{"table": table}).WithCause(err)
}

func allExpectedColumns() []string {
	all := make([]string, 0, len(requiredColumns)+len(auditColumns)+len(reactivationColumns))
	all = append(all, requiredColumns...)
	all = append(all, auditColumns...)
	all = append(all, reactivationColumns...)
	return all
}

func containsAll(existing map[string]bool, cols []string) bool {
	for _, col := range cols {
		if !existing[col] {
			return false
		}
	}
	return true
}

func buildRecommendations(v *SoftDeleteValidation) []string {
	var recs []string
	if !v.HasBasicSoftDelete {
		recs = append(recs, "add a boolean 'active' column (default true) to enable soft delete on "+v.Table)
	}
	if v.HasBasicSoftDelete && !v.HasFullAuditSupport {
		recs = append(recs, "add deleted_at/deleted_by/deletion_reason/deletion_ip columns to "+v.Table+" for a complete deletion audit trail")
	}
	if v.HasBasicSoftDelete && !v.HasReactivationSupport {
		recs = append(recs, "add reactivated_at/reactivated_by columns to "+v.Table+" to audit reactivations")
	}
	return recs
}
