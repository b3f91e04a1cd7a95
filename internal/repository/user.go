package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// User is a storefront or admin account.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Audit
}

// UserFilters is the user-specific filter vocabulary.
type UserFilters struct {
	Role               string
	EmailVerified      *bool
	Search             string // matches email and full_name
	IncludeDeactivated bool
}

// UserRepository handles user data access.
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a user repository.
func NewUserRepository(client postgrest.Client, logger zerolog.Logger) *UserRepository {
	return &UserRepository{Repository: New(client, "users", logger)}
}

func decodeUser(r Record) *User {
	return &User{
		ID:            recInt64(r, "id"),
		Email:         recString(r, "email"),
		PasswordHash:  recString(r, "password_hash"),
		FullName:      recString(r, "full_name"),
		Phone:         recString(r, "phone"),
		Role:          recString(r, "role"),
		EmailVerified: recBool(r, "email_verified"),
		CreatedAt:     recTime(r, "created_at"),
		UpdatedAt:     recTime(r, "updated_at"),
		Audit:         decodeAudit(r),
	}
}

// GetByID returns the user or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64, includeInactive bool) (*User, error) {
	record, err := r.FindByID(ctx, id, includeInactive)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeUser(record), nil
}

// GetByEmail returns the active user with the given email, or nil.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	record, err := r.client.From(r.table).
		Select("*").
		Eq("email", email).
		Eq("active", true).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "getByEmail", r.table, r.logger)
	}
	return decodeUser(record), nil
}

// EmailExists reports whether any record (active or not) holds the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.Exists(ctx, map[string]interface{}{"email": email})
}

// List returns users matching the filters.
func (r *UserRepository) List(ctx context.Context, filters UserFilters, opts ListOptions) ([]*User, error) {
	generic := ListFilters{
		Equals:             map[string]interface{}{},
		IncludeDeactivated: filters.IncludeDeactivated,
	}
	if filters.Role != "" {
		generic.Equals["role"] = filters.Role
	}
	if filters.EmailVerified != nil {
		generic.Equals["email_verified"] = *filters.EmailVerified
	}
	if filters.Search != "" {
		generic.Search = filters.Search
		generic.SearchColumns = []string{"email", "full_name"}
	}

	records, err := r.FindAll(ctx, generic, opts)
	if err != nil {
		return nil, err
	}

	users := make([]*User, len(records))
	for i, rec := range records {
		users[i] = decodeUser(rec)
	}
	return users, nil
}
