package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/logkey"
	"marketplace/internal/models"
)

type RegisterInput struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Address         string `json:"address" validate:"required"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountService struct {
	users    UserStore
	tokens   *auth.TokenIssuer
	validate *validator.Validate
}

func NewAccountService(users UserStore, tokens *auth.TokenIssuer) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		validate: NewValidator(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a buyer account. Nothing is stored unless every field is
// present and both passwords agree.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		if hasTag(err, "required") {
			return nil, apperr.Validation("All fields are required")
		}
		return nil, validationError(err)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation("Passwords do not match")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("User registration failed", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Password: hash,
		Role:     models.RoleBuyer,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", slog.String(logkey.UserID, user.ID.Hex()))
	return user, nil
}

// Login checks credentials and issues a session token. An unknown email is
// reported as not found, distinct from a wrong password.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, "", validationError(err)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}

	ok, err := auth.VerifyPassword(in.Password, user.Password)
	if err != nil {
		return nil, "", apperr.Internal("Login failed", err)
	}
	if !ok {
		return nil, "", apperr.Validation("Invalid credentials")
	}
	if user.Status == models.UserStatusInactive {
		return nil, "", apperr.Forbidden("Account is inactive")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Internal("Login failed", err)
	}

	slog.InfoContext(ctx, "user logged in", slog.String(logkey.UserID, user.ID.Hex()))
	return user, token, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	objID, err := parseID(id, "User not found")
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, objID)
}

// Update lets a user edit their own profile and an admin edit anyone's. Role
// and status are admin-only fields.
func (s *AccountService) Update(ctx context.Context, actor *models.User, id string, update models.UserUpdate) (*models.User, error) {
	objID, err := parseID(id, "User not found")
	if err != nil {
		return nil, err
	}

	isAdmin := actor.HasRole(models.RoleAdmin)
	if actor.ID != objID && !isAdmin {
		return nil, apperr.Forbidden("You can only update your own profile")
	}
	if update.Privileged() && !isAdmin {
		return nil, apperr.Forbidden("Only an admin can change role or status")
	}

	if update.Empty() {
		return nil, apperr.Validation("No valid fields to update")
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		update.Email = &email
	}
	if err := s.validate.Struct(update); err != nil {
		return nil, validationError(err)
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		return nil, apperr.Validation("username cannot be empty")
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, apperr.Validation("Invalid role")
	}
	if update.Status != nil && *update.Status != models.UserStatusActive && *update.Status != models.UserStatusInactive {
		return nil, apperr.Validation("Invalid status")
	}

	user, err := s.users.Update(ctx, objID, update)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user updated",
		slog.String(logkey.UserID, user.ID.Hex()), slog.String("by", actor.ID.Hex()))
	return user, nil
}

// Delete removes an account. Only admins hard-delete identities.
func (s *AccountService) Delete(ctx context.Context, actor *models.User, id string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return apperr.Forbidden("Only an admin can delete users")
	}
	objID, err := parseID(id, "User not found")
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, objID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted",
		slog.String(logkey.UserID, objID.Hex()), slog.String("by", actor.ID.Hex()))
	return nil
}

// SessionTTL is how long an issued session token stays valid.
func (s *AccountService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// List returns all accounts, or only those holding role when it is set.
func (s *AccountService) List(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.users.FindAll(ctx, role)
}
