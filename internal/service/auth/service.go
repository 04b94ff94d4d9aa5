package auth

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pdf-api/internal/email"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/repository"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	"github.com/jwalitptl/pdf-api/pkg/auth"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/metrics"
	"github.com/jwalitptl/pdf-api/pkg/security"
)

const (
	msgBadCredentials = "incorrect email or password"
	msgInactive       = "inactive user"
	msgLockedOut      = "too many login attempts, try again later"
	msgUserNotFound   = "user not found"
	msgEmailTaken     = "email already registered"

	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 15 * time.Minute
	maxRecordRetries        = 3
)

type Config struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
}

type Service struct {
	users    repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	mailer   email.Service
	auditor  *audit.Service
	metrics  *metrics.Metrics
	attempts *cache.Cache
	cfg      Config
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	mailer email.Service, auditor *audit.Service, m *metrics.Metrics, cfg Config) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	return &Service{
		users:    users,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		mailer:   mailer,
		auditor:  auditor,
		metrics:  m,
		attempts: cache.New(cfg.LockoutDuration, 2*cfg.LockoutDuration),
		cfg:      cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordLength) {
			return nil, errors.Validation([]errors.FieldError{{Field: "password", Message: err.Error()}}, err)
		}
		return nil, errors.Internal(err)
	}

	user := &model.User{
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.Conflict(msgEmailTaken, err)
		}
		return nil, errors.Internal(err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", user.ID).Msg("failed to send welcome email")
		}
	}

	s.auditor.Log(ctx, audit.Event{
		Action:     audit.ActionRegister,
		Actor:      user.Email,
		Resource:   "user",
		ResourceID: strconv.FormatInt(user.ID, 10),
	})
	return user, nil
}

// Authenticate checks credentials. Repeated failures for one email lock it
// out for the lockout window measured from the first failure.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	key := normalizeEmail(email)
	if s.lockedOut(key) {
		s.loginFailed(ctx, key, "locked out")
		return nil, errors.New(errors.KindTooManyRequests, msgLockedOut, nil)
	}

	user, err := s.users.GetByEmail(ctx, key)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Internal(err)
		}
		s.recordFailure(key)
		s.loginFailed(ctx, key, "unknown email")
		return nil, errors.Unauthorized(msgBadCredentials, nil)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.recordFailure(key)
		s.loginFailed(ctx, key, "wrong password")
		return nil, errors.Unauthorized(msgBadCredentials, nil)
	}

	if !user.IsActive {
		s.loginFailed(ctx, key, "inactive")
		return nil, errors.Forbidden(msgInactive)
	}

	s.attempts.Delete(key)
	return user, nil
}

// Login authenticates and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, audit.Event{
		Action:     audit.ActionLogin,
		Actor:      user.Email,
		Resource:   "user",
		ResourceID: strconv.FormatInt(user.ID, 10),
	})
	return token, nil
}

func (s *Service) IssueToken(user *model.User) (*model.Token, error) {
	token, _, err := s.jwtSvc.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &model.Token{
		AccessToken: token,
		TokenType:   model.TokenTypeBearer,
		ExpiresIn:   int64(s.jwtSvc.Expiry().Seconds()),
	}, nil
}

// VerifyToken resolves a bearer token to an active user.
func (s *Service) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized("", err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized(msgUserNotFound, err)
		}
		return nil, errors.Internal(err)
	}
	if !user.IsActive {
		return nil, errors.Forbidden(msgInactive)
	}
	return user, nil
}

func (s *Service) lockedOut(key string) bool {
	n, found := s.attempts.Get(key)
	return found && n.(int) >= s.cfg.MaxLoginAttempts
}

// recordFailure counts a failed attempt. The entry may expire between Add and
// IncrementInt, in which case Add is tried again.
func (s *Service) recordFailure(key string) {
	for i := 0; i < maxRecordRetries; i++ {
		if err := s.attempts.Add(key, 1, s.cfg.LockoutDuration); err == nil {
			return
		}
		if _, err := s.attempts.IncrementInt(key, 1); err == nil {
			return
		}
	}
	s.attempts.Set(key, 1, s.cfg.LockoutDuration)
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) {
	if s.metrics != nil {
		s.metrics.LoginFailures.Inc()
	}
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionLoginFailed,
		Actor:    email,
		Resource: "user",
		Outcome:  audit.OutcomeFailure,
		Metadata: model.JSONMap{"reason": reason},
	})
}
