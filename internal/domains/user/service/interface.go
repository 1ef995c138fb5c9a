package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// ServiceInterface is the account business-logic contract
type ServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error)

	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error

	// Admin
	ListUsers(ctx context.Context, page, limit int) ([]model.User, int, error)
	ChangeRole(ctx context.Context, actorID, userID uuid.UUID, role model.Role) (*model.User, error)
}
