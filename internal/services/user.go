package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/repository"
)

// CreateUserRequest is the payload to register a user account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateUserRequest is the payload to update a user. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Role          *string `json:"role" validate:"omitempty,oneof=user admin"`
	EmailVerified *bool   `json:"email_verified"`
}

// UserService handles user account operations.
type UserService struct {
	repos      *repository.Repositories
	events     *events.Publisher
	validate   *validator.Validate
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService creates a user service.
func NewUserService(deps Deps, validate *validator.Validate, logger zerolog.Logger) *UserService {
	return &UserService{
		repos:      deps.Repos,
		events:     deps.Events,
		validate:   validate,
		bcryptCost: deps.BCryptCost,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// Create registers a user, hashing the password before storage. A taken
// email is a conflict.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*repository.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	taken, err := s.repos.User.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("email already registered",
			map[string]interface{}{"email": req.Email})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.BadRequest("password cannot be hashed", nil)
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	record, err := s.repos.User.Create(ctx, repository.Record{
		"email":         req.Email,
		"password_hash": string(hash),
		"full_name":     req.FullName,
		"phone":         req.Phone,
		"role":          role,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByID(ctx, recordID(record), false)
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.SubjectUserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Get returns a user by id, or a not-found error.
func (s *UserService) Get(ctx context.Context, id int64, includeInactive bool) (*repository.User, error) {
	user, err := s.repos.User.GetByID(ctx, id, includeInactive)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

// List returns a page of users plus the total match count.
func (s *UserService) List(ctx context.Context, filters repository.UserFilters, opts repository.ListOptions) ([]*repository.User, int64, error) {
	users, err := s.repos.User.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, err
	}

	countFilters := map[string]interface{}{}
	if !filters.IncludeDeactivated {
		countFilters["active"] = true
	}
	if filters.Role != "" {
		countFilters["role"] = filters.Role
	}
	if filters.EmailVerified != nil {
		countFilters["email_verified"] = *filters.EmailVerified
	}
	total, err := s.repos.User.Count(ctx, countFilters)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update patches a user account.
func (s *UserService) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*repository.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	data := repository.Record{}
	if req.FullName != nil {
		data["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		data["phone"] = *req.Phone
	}
	if req.Role != nil {
		data["role"] = *req.Role
	}
	if req.EmailVerified != nil {
		data["email_verified"] = *req.EmailVerified
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("no fields to update", nil)
	}

	if _, err := s.repos.User.Update(ctx, id, data); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, true)
}

// Delete soft-deletes a user account.
func (s *UserService) Delete(ctx context.Context, id int64, audit repository.AuditInfo) error {
	if _, err := s.repos.User.Delete(ctx, id, audit); err != nil {
		return err
	}

	s.events.Publish(events.SubjectUserDeactivated, map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// Reactivate restores a soft-deleted user account.
func (s *UserService) Reactivate(ctx context.Context, id int64, reactivatedBy *int64) (*repository.User, error) {
	if _, err := s.repos.User.Reactivate(ctx, id, reactivatedBy); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, false)
}
