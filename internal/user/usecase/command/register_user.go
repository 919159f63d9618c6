package command

import (
	"context"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/auth"
)

// RegisterUserCommand represents the command to register a new staff account
type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
	Phone    string
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	if cmd.Username == "" {
		return nil, apperrors.NewValidation("username", "is required")
	}
	if cmd.Email == "" {
		return nil, apperrors.NewValidation("email", "is required")
	}
	if cmd.Password == "" {
		return nil, apperrors.NewValidation("password", "is required")
	}
	if len(cmd.Password) < 6 {
		return nil, apperrors.NewValidation("password", "must be at least 6 characters")
	}
	if cmd.FullName == "" {
		return nil, apperrors.NewValidation("full_name", "is required")
	}
	if !domain.ValidRole(cmd.Role) {
		return nil, apperrors.NewValidation("role", "must be DOCTOR, PHARMACIST or ADMIN")
	}
	// Doctors must be reachable for urgent prescriptions
	if cmd.Role == domain.RoleDoctor && cmd.Phone == "" {
		return nil, apperrors.NewValidation("phone", "is required for doctors")
	}

	// Check if user already exists
	if existingUser, _ := h.repo.FindByUsername(ctx, cmd.Username); existingUser != nil {
		return nil, apperrors.NewValidation("username", "already exists")
	}
	if existingUser, _ := h.repo.FindByEmail(ctx, cmd.Email); existingUser != nil {
		return nil, apperrors.NewValidation("email", "already exists")
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  cmd.Username,
		Email:     cmd.Email,
		Password:  hashedPassword,
		FullName:  cmd.FullName,
		Role:      cmd.Role,
		Phone:     cmd.Phone,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
