package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/storetest"
)

func newAccounts(seed ...*models.User) (*AccountService, *storetest.Users, *auth.TokenIssuer) {
	users := storetest.NewUsers(seed...)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAccountService(users, tokens), users, tokens
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "ana",
		Email:           "Ana@Example.com",
		Phone:           "555-0100",
		Address:         "1 Main St",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, users, tokens := newAccounts()

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.NotEqual(t, "hunter22", user.Password)
	assert.Equal(t, 1, users.Len())

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), user.Password)

	logged, token, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	id, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestRegisterRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "other" }, "Passwords do not match"},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }, "All fields are required"},
		{"missing confirmation", func(in *RegisterInput) { in.ConfirmPassword = "" }, "All fields are required"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email must be a valid email address"},
		{"password over bcrypt limit", func(in *RegisterInput) {
			in.Password = strings.Repeat("a", 73)
			in.ConfirmPassword = in.Password
		}, "password must be at most 72"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _ := newAccounts()
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Equal(t, tt.msg, apperr.PublicMessage(err))
			assert.Zero(t, users.Len())
			assert.Zero(t, users.Writes)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAccounts()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newAccounts()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), LoginInput{Email: "who@example.com", Password: "x"})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, token, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Invalid credentials", apperr.PublicMessage(err))
		assert.Empty(t, token)
	})

	t.Run("malformed stored hash", func(t *testing.T) {
		broken := &models.User{Email: "bad@example.com", Password: "plaintext"}
		svc, _, _ := newAccounts(broken)
		_, _, err := svc.Login(context.Background(), LoginInput{Email: "bad@example.com", Password: "plaintext"})
		assert.True(t, apperr.Is(err, apperr.KindInternal))
		var verr *auth.VerificationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestLoginInactiveAccount(t *testing.T) {
	hash, err := auth.HashPassword("pw123456")
	require.NoError(t, err)
	svc, _, _ := newAccounts(&models.User{Email: "off@example.com", Password: hash, Status: models.UserStatusInactive})

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "off@example.com", Password: "pw123456"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func strPtr(s string) *string { return &s }

func TestUpdatePermissions(t *testing.T) {
	buyer := &models.User{ID: primitive.NewObjectID(), Email: "b@example.com", Role: models.RoleBuyer}
	other := &models.User{ID: primitive.NewObjectID(), Email: "o@example.com", Role: models.RoleBuyer}
	admin := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleAdmin}
	svc, users, _ := newAccounts(buyer, other, admin)

	t.Run("self", func(t *testing.T) {
		u, err := svc.Update(context.Background(), buyer, buyer.ID.Hex(), models.UserUpdate{Phone: strPtr("555")})
		require.NoError(t, err)
		assert.Equal(t, "555", u.Phone)
	})

	t.Run("someone else", func(t *testing.T) {
		writes := users.Writes
		_, err := svc.Update(context.Background(), buyer, other.ID.Hex(), models.UserUpdate{Phone: strPtr("1")})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		assert.Equal(t, writes, users.Writes)
	})

	t.Run("self promotion", func(t *testing.T) {
		role := models.RoleAdmin
		_, err := svc.Update(context.Background(), buyer, buyer.ID.Hex(), models.UserUpdate{Role: &role})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("admin sets role", func(t *testing.T) {
		role := models.RoleSeller
		u, err := svc.Update(context.Background(), admin, other.ID.Hex(), models.UserUpdate{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, models.RoleSeller, u.Role)
	})

	t.Run("admin sets unknown role", func(t *testing.T) {
		role := models.Role("root")
		_, err := svc.Update(context.Background(), admin, other.ID.Hex(), models.UserUpdate{Role: &role})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Update(context.Background(), buyer, buyer.ID.Hex(), models.UserUpdate{})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("taken email", func(t *testing.T) {
		_, err := svc.Update(context.Background(), buyer, buyer.ID.Hex(), models.UserUpdate{Email: strPtr("O@example.com")})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestDeleteIsAdminOnly(t *testing.T) {
	buyer := &models.User{ID: primitive.NewObjectID(), Email: "b@example.com", Role: models.RoleBuyer}
	admin := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleAdmin}
	svc, users, _ := newAccounts(buyer, admin)

	err := svc.Delete(context.Background(), buyer, buyer.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, 2, users.Len())

	require.NoError(t, svc.Delete(context.Background(), admin, buyer.ID.Hex()))
	assert.Equal(t, 1, users.Len())

	err = svc.Delete(context.Background(), admin, buyer.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListByRole(t *testing.T) {
	svc, _, _ := newAccounts(
		&models.User{Email: "s1@example.com", Role: models.RoleSeller},
		&models.User{Email: "s2@example.com", Role: models.RoleSeller},
		&models.User{Email: "b@example.com", Role: models.RoleBuyer},
	)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sellers, err := svc.List(context.Background(), models.RoleSeller)
	require.NoError(t, err)
	assert.Len(t, sellers, 2)
}
