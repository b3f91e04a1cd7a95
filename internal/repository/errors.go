package repository

import (
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/postgrest"
)

// Supabase-flavored PostgREST codes that arrive alongside raw SQLSTATE
// codes.
const (
	codeJWTExpired   = "PGRST301"
	codeConnDropped  = pgerrcode.ConnectionDoesNotExist
	codeConnFailed   = pgerrcode.ConnectionFailure
	codeConnRefused  = pgerrcode.SQLClientUnableToEstablishSQLConnection
	codeTruncation   = pgerrcode.StringDataRightTruncationDataException
	codeOutOfRange   = pgerrcode.NumericValueOutOfRange
	codeUndefTable   = pgerrcode.UndefinedTable
	codeUndefColumn  = pgerrcode.UndefinedColumn
	codeDeadlock     = pgerrcode.DeadlockDetected
	codeSerialFail   = pgerrcode.SerializationFailure
	codePrivilege    = pgerrcode.InsufficientPrivilege
	codeUniqueViol   = pgerrcode.UniqueViolation
	codeForeignKey   = pgerrcode.ForeignKeyViolation
	codeCheckViol    = pgerrcode.CheckViolation
	codeNotNullViol  = pgerrcode.NotNullViolation
)

var (
	constraintPattern = regexp.MustCompile(`constraint "([^"]+)"`)
	columnPattern     = regexp.MustCompile(`column "([^"]+)"`)
)

// MapError translates a backend {code, message} error into an application
// error. The mapping is pure and total: every input produces exactly one
// typed error, and unrecognized codes come back as a generic database error
// flagged Unmapped. Table and operation are stamped into the error context
// together with the original code and message.
func MapError(dbErr *postgrest.Error, operation, table string) *apperror.Error {
	ctx := map[string]interface{}{
		"operation":        operation,
		"table":            table,
		"original_code":    dbErr.Code,
		"original_message": dbErr.Message,
	}

	switch dbErr.Code {
	case postgrest.CodeNoRows:
		return apperror.NotFound(table, "requested").WithContext(ctx)

	case codeJWTExpired:
		return apperror.Unauthorized("invalid or expired token").WithContext(ctx)

	case codeUniqueViol:
		constraint := ExtractConstraintName(dbErr.Message)
		return apperror.DatabaseConstraint(constraint, table).
			WithContext(ctx).
			WithContext(map[string]interface{}{"duplicate": true})

	case codeForeignKey:
		return apperror.Conflict("referential integrity violation on "+table, ctx)

	case codeCheckViol:
		constraint := ExtractConstraintName(dbErr.Message)
		return apperror.BadRequest("business rule violated: "+constraint, ctx)

	case codeNotNullViol:
		column := ExtractColumnName(dbErr.Message)
		return apperror.Validation("required field missing: "+column, column).WithContext(ctx)

	case codePrivilege:
		return apperror.Forbidden("insufficient database privileges").WithContext(ctx)

	case codeConnFailed, codeConnRefused, codeConnDropped:
		return apperror.ServiceUnavailable("database", ctx)

	case codeDeadlock, codeSerialFail:
		return apperror.Conflict("concurrent modification detected, retry the operation", ctx)

	case codeUndefTable, codeUndefColumn:
		return apperror.Database(operation, table, "schema mismatch: "+dbErr.Message).WithContext(ctx)

	case codeTruncation, codeOutOfRange:
		return apperror.BadRequest("value out of range for "+table, ctx)

	default:
		mapped := apperror.Database(operation, table, dbErr.Message).WithContext(ctx)
		mapped.Unmapped = true
		return mapped
	}
}

// ExtractConstraintName pulls the constraint name out of a Postgres error
// message. The message format is not contractual, so a non-matching message
// yields a sentinel rather than an error.
func ExtractConstraintName(message string) string {
	if m := constraintPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return "unknown_constraint"
}

// ExtractColumnName pulls the offending column out of a not-null violation
// message, with the same sentinel fallback as ExtractConstraintName.
func ExtractColumnName(message string) string {
	if m := columnPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return "unknown_column"
}

// WrapError applies MapError around an arbitrary failure. Already-typed
// application errors pass through untouched so callers never see
// double-wrapping; everything else is mapped, context-stamped and logged.
func WrapError(err error, operation, table string, logger zerolog.Logger) error {
	if err == nil {
		return nil
	}

	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var dbErr *postgrest.Error
	if !errors.As(err, &dbErr) {
		dbErr = &postgrest.Error{Message: err.Error()}
	}

	mapped := MapError(dbErr, operation, table)

	logger.Error().
		Str("table", table).
		Str("operation", operation).
		Str("code", dbErr.Code).
		Str("kind", string(mapped.Kind)).
		Bool("unmapped", mapped.Unmapped).
		Time("timestamp", mapped.Timestamp).
		Msg(dbErr.Message)

	return mapped
}
