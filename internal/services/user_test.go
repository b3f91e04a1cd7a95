package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

func TestUserCreateHashesPassword(t *testing.T) {
	svcs, client := newFixture(t)

	user, err := svcs.User.Create(context.Background(), &services.CreateUserRequest{
		Email:    "rosa@example.com",
		Password: "garden-secret",
		FullName: "Rosa Morales",
	})
	require.NoError(t, err)
	require.Equal(t, "user", user.Role)

	rows := client.Rows("users")
	require.Len(t, rows, 1)

	hash, _ := rows[0]["password_hash"].(string)
	require.NotEqual(t, "garden-secret", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("garden-secret")))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	_, err := svcs.User.Create(ctx, &services.CreateUserRequest{
		Email:    "rosa@example.com",
		Password: "garden-secret",
		FullName: "Rosa Morales",
	})
	require.NoError(t, err)

	_, err = svcs.User.Create(ctx, &services.CreateUserRequest{
		Email:    "rosa@example.com",
		Password: "another-secret",
		FullName: "Rosa Impostor",
	})
	require.True(t, apperror.IsKind(err, apperror.KindConflict), "got %v", err)
}

func TestUserCreateValidation(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  services.CreateUserRequest
	}{
		{"bad_email", services.CreateUserRequest{Email: "not-an-email", Password: "garden-secret", FullName: "Rosa"}},
		{"short_password", services.CreateUserRequest{Email: "rosa@example.com", Password: "short", FullName: "Rosa"}},
		{"bad_role", services.CreateUserRequest{Email: "rosa@example.com", Password: "garden-secret", FullName: "Rosa", Role: "root"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svcs.User.Create(ctx, &tc.req)
			require.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
		})
	}
}

func TestUserDeleteAndReactivate(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	user, err := svcs.User.Create(ctx, &services.CreateUserRequest{
		Email:    "rosa@example.com",
		Password: "garden-secret",
		FullName: "Rosa Morales",
	})
	require.NoError(t, err)

	require.NoError(t, svcs.User.Delete(ctx, user.ID, repository.AuditInfo{Reason: "account closed"}))

	_, err = svcs.User.Get(ctx, user.ID, false)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound), "got %v", err)

	restored, err := svcs.User.Reactivate(ctx, user.ID, nil)
	require.NoError(t, err)
	require.True(t, restored.Active)
}
