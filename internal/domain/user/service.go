package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carehub/carehub/internal/domain/audit"
	"github.com/carehub/carehub/internal/platform/apperror"
	"github.com/carehub/carehub/internal/platform/auth"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

type Service struct {
	repo       Repository
	audit      *audit.Service
	signingKey []byte
}

func NewService(repo Repository, auditSvc *audit.Service, signingKey []byte) *Service {
	return &Service{repo: repo, audit: auditSvc, signingKey: signingKey}
}

// Signup creates an account. While no Admin account exists the endpoint is
// an open bootstrap: the very first signup must create an Admin. Once any
// Admin exists, only an authenticated Admin may create further accounts.
func (s *Service) Signup(ctx context.Context, actor *auth.Identity, req *SignupRequest) (*User, error) {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, apperror.New(apperror.KindValidation, "a valid email is required")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperror.Newf(apperror.KindValidation, "password must be at least %d characters", MinPasswordLength)
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "invalid role", err)
	}

	admins, err := s.repo.CountByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "count admin accounts", err)
	}
	if admins == 0 {
		// Bootstrap: the install has no owner yet. Only an Admin account
		// makes sense as the first one.
		if role != auth.RoleAdmin {
			return nil, apperror.New(apperror.KindValidation, "the first account must be an Admin")
		}
	} else {
		if actor == nil {
			return nil, apperror.New(apperror.KindAuthentication, "authentication required")
		}
		if actor.Role != auth.RoleAdmin {
			return nil, apperror.New(apperror.KindAuthorization, "only an Admin may create accounts")
		}
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.New(apperror.KindConflict, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "hash password", err)
	}

	u := &User{
		FullName:     req.FullName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         role,
		ClientIDs:    req.ClientIDs,
		StaffID:      req.StaffID,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "create account", err)
	}

	s.audit.Record(ctx, actor, audit.ActionSignup, "User", &u.ID)
	return u, nil
}

// Login verifies credentials and issues a session token. Authentication
// failures are indistinguishable whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.New(apperror.KindValidation, "email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.New(apperror.KindAuthentication, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.New(apperror.KindAuthentication, "invalid credentials")
	}

	token, err := auth.IssueToken(s.signingKey, u.Identity(), time.Now())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "issue token", err)
	}

	s.audit.Record(ctx, u.Identity(), audit.ActionLogin, "User", &u.ID)
	return &LoginResponse{Token: token, User: u}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial change to an account.
func (s *Service) Update(ctx context.Context, actor *auth.Identity, id uuid.UUID, req *UpdateRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Password != nil {
		if len(*req.Password) < MinPasswordLength {
			return nil, apperror.Newf(apperror.KindValidation, "password must be at least %d characters", MinPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindDependency, "hash password", err)
		}
		u.PasswordHash = string(hash)
	}
	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindValidation, "invalid role", err)
		}
		u.Role = role
	}
	if req.ClientIDs != nil {
		u.ClientIDs = *req.ClientIDs
	}
	if req.StaffID != nil {
		u.StaffID = req.StaffID
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperror.Wrap(apperror.KindDependency, "update account", err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "User", &u.ID)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.New(apperror.KindNotFound, "user not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(apperror.KindDependency, "delete account", err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "User", &id)
	return nil
}
