package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gmihail/shop/internal/profiles"
	"github.com/gmihail/shop/internal/users"
	pkgAuth "github.com/gmihail/shop/pkg/auth"
	"github.com/gmihail/shop/pkg/auth/session"
	"github.com/gmihail/shop/pkg/config"
	"github.com/gmihail/shop/pkg/db"
	"github.com/gmihail/shop/pkg/db/models"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	emailTakenMessage         = "email already registered"
	profileNotFoundMessage    = "profile not found"
	userNotFoundMessage       = "user not found"

	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// Service is the auth provider used by the HTTP layer.
type Service interface {
	SignUp(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	SignIn(ctx context.Context, email, password string) (session.Session, error)
	// SignOut revokes the session registered for accessID. Unknown ids are ignored.
	SignOut(ctx context.Context, accessID string) error
	GetUserByID(ctx context.Context, userID string) (*users.UserDTO, error)
	GetProfile(ctx context.Context, userID string) (*ProfileView, error)
	UpdateProfile(ctx context.Context, userID, username string) (*ProfileView, error)
	// RegistrationDate falls back to now when the user cannot be loaded.
	RegistrationDate(ctx context.Context, userID string) time.Time
}

type sessionManager interface {
	Register(ctx context.Context, accessID, userID string, ttl time.Duration) error
	Revoke(ctx context.Context, accessID string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	VerifyMissing(password string)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             *db.Client
	SessionManager sessionManager
	Hasher         passwordHasher
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	db       *db.Client
	users    *users.Repository
	profiles *profiles.Repository
	sessions sessionManager
	hasher   passwordHasher
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:       params.DB,
		users:    users.NewRepository(params.DB.DB()),
		profiles: profiles.NewRepository(params.DB.DB()),
		sessions: params.SessionManager,
		hasher:   params.Hasher,
		jwtCfg:   params.JWTConfig,
		now:      now,
	}, nil
}

func (s *service) SignUp(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		profileRepo := s.profiles.WithTx(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			CreatedAt:    now,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if _, err := profileRepo.Create(ctx, profiles.Profile{
			UserID:    user.ID.String(),
			Username:  username,
			CreatedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}

func (s *service) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return session.Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	minted, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		return session.Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.sessions.Register(ctx, minted.ID, user.ID.String(), minted.TTL); err != nil {
		return session.Session{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return session.Session{
		AccessToken: minted.Token,
		TokenType:   session.TokenTypeBearer,
		ExpiresIn:   int64(minted.TTL / time.Second),
		ExpiresAt:   minted.ExpiresAt.Unix(),
		User: &session.User{
			ID:    user.ID.String(),
			Email: user.Email,
		},
	}, nil
}

func (s *service) SignOut(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*users.UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, user.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, profileNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return &ProfileView{
		UserID:       profile.UserID,
		Username:     profile.Username,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID, username string) (*ProfileView, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(strings.TrimSpace(userID)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id")
	}
	changed, err := s.profiles.UpdateUsername(ctx, strings.TrimSpace(userID), username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	if !changed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, profileNotFoundMessage)
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) RegistrationDate(ctx context.Context, userID string) time.Time {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return s.now().UTC()
	}
	return user.CreatedAt
}

// normalizeUsername collapses whitespace runs and checks the length of what
// will actually be stored.
func normalizeUsername(raw string) (string, error) {
	username := strings.Join(strings.Fields(raw), " ")
	if username == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	return username, nil
}

func (s *service) loadUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.VerifyMissing(password)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
