package auth_test

import (
	"context"
	"testing"

	"github.com/gigline/auth"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	repo := setupRepo(t)
	handler := auth.NewRegisterUserHandler(repo)
	ctx := context.Background()

	user, err := handler.Execute(ctx, auth.RegisterUserMessage{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "Ada@Example.com",
		Phone:      "+12025550142",
		Instrument: "piano",
		Password:   "password-1234",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password-1234", user.PasswordHash)
	assert.NoError(t, auth.ComparePasswordAndHash("password-1234", user.PasswordHash))
}

func TestRegisterUserHandlerDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)
	handler := auth.NewRegisterUserHandler(repo)
	ctx := context.Background()

	msg := auth.RegisterUserMessage{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password-1234",
	}

	_, err := handler.Execute(ctx, msg)
	require.NoError(t, err)

	_, err = handler.Execute(ctx, msg)
	require.Error(t, err)

	var rich *errors.Error
	require.True(t, errors.As(err, &rich))
	assert.Equal(t, errors.CategoryConflict, rich.Category)
}

func TestRegisterUserHandlerExplicitRole(t *testing.T) {
	repo := setupRepo(t)
	handler := auth.NewRegisterUserHandler(repo)

	user, err := handler.Execute(context.Background(), auth.RegisterUserMessage{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Role:      auth.RoleAdmin,
		Password:  "password-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, user.Role)
}

func TestRegisterUserHandlerHashid(t *testing.T) {
	handler1 := auth.NewRegisterUserHandler(setupRepo(t))
	handler2 := auth.NewRegisterUserHandler(setupRepo(t))

	msg := auth.RegisterUserMessage{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password-1234",
		UseHashid: true,
	}

	// the derived id is deterministic across stores
	u1, err := handler1.Execute(context.Background(), msg)
	require.NoError(t, err)
	u2, err := handler2.Execute(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
}

func TestRegisterUserHandlerEmptyPassword(t *testing.T) {
	handler := auth.NewRegisterUserHandler(setupRepo(t))

	_, err := handler.Execute(context.Background(), auth.RegisterUserMessage{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	assert.Error(t, err)
}

func TestRegisterUserMessageType(t *testing.T) {
	assert.Equal(t, "user.register", auth.RegisterUserMessage{}.Type())
}
