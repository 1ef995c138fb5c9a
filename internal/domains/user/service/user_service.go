package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	auditmodel "library-backend/internal/domains/audit/model"
	audit "library-backend/internal/domains/audit/service"
	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"
)

type userService struct {
	repo  repository.RepositoryInterface
	jwt   *jwt.Manager
	audit audit.ServiceInterface
}

// NewUserService creates the account business-logic layer
func NewUserService(repo repository.RepositoryInterface, jwtManager *jwt.Manager, audit audit.ServiceInterface) ServiceInterface {
	return &userService{
		repo:  repo,
		jwt:   jwtManager,
		audit: audit,
	}
}

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hash),
		FullName:  req.FullName,
		Role:      model.RoleReader, // self-registration never grants staff roles
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user.ID, auditmodel.ActionAddUser,
		fmt.Sprintf("registered account %s", user.Email))

	return s.issueTokens(user)
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Missing account and wrong password look the same to the caller
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Error("failed to stamp last login", err)
	}

	s.audit.Record(ctx, user.ID, auditmodel.ActionLogin,
		fmt.Sprintf("logged in as %s", user.Email))

	return s.issueTokens(user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	// Role is re-read from the database so a demotion takes effect on
	// the next refresh, not at the old token's expiry.
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Phone = nil
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.User, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *userService) ChangeRole(ctx context.Context, actorID, userID uuid.UUID, role model.Role) (*model.User, error) {
	if !role.IsValid() {
		return nil, model.ErrInvalidRole
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, auditmodel.ActionEditUser,
		fmt.Sprintf("changed role of %s to %s", user.Email, role))

	return user, nil
}

func (s *userService) issueTokens(user *model.User) (*model.LoginResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         *user,
	}, nil
}
