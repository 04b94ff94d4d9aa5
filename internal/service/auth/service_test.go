package auth

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/repository"
	"github.com/jwalitptl/pdf-api/internal/repository/memory"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	"github.com/jwalitptl/pdf-api/pkg/auth"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/metrics"
	"github.com/jwalitptl/pdf-api/pkg/security"
)

type recordingMailer struct {
	to  []string
	err error
}

func (m *recordingMailer) SendWelcome(_ context.Context, email string, _ string) error {
	m.to = append(m.to, email)
	return m.err
}

type fixture struct {
	svc    *Service
	users  repository.UserRepository
	mailer *recordingMailer
	m      *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	mailer := &recordingMailer{}
	m := metrics.New("test", prometheus.NewRegistry())
	svc := NewService(
		users,
		auth.NewJWTService("secret", "pdf-api", 30*time.Minute),
		security.NewBcryptHasher(bcrypt.MinCost),
		mailer,
		audit.NewService(zerolog.Nop()),
		m,
		Config{MaxLoginAttempts: 3, LockoutDuration: time.Minute},
	)
	return &fixture{svc: svc, users: users, mailer: mailer, m: m}
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		Email: email, Password: "password123", Name: "Alice",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, " Alice@Example.com ")
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, []string{"alice@example.com"}, f.mailer.to)

	_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		Email: "alice@example.com", Password: "password123", Name: "Other",
	})
	require.Error(t, err)
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))
	assert.Contains(t, err.Error(), "email already registered")
}

func TestRegister_MailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = stderrors.New("smtp down")

	user := f.register(t, "alice@example.com")
	assert.NotZero(t, user.ID)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")

	token, err := f.svc.Login(context.Background(), "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.TokenTypeBearer, token.TokenType)
	assert.Equal(t, int64(1800), token.ExpiresIn)

	user, err := f.svc.VerifyToken(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestAuthenticate_Failures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "alice@example.com", "wrong-password")
	assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
	assert.Contains(t, err.Error(), "incorrect email or password")

	_, err = f.svc.Authenticate(ctx, "nobody@example.com", "password123")
	assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
	assert.Contains(t, err.Error(), "incorrect email or password")

	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.LoginFailures))
}

func TestAuthenticate_Inactive(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice@example.com")
	user.IsActive = false
	require.NoError(t, f.users.Update(context.Background(), user))

	_, err := f.svc.Authenticate(context.Background(), "alice@example.com", "password123")
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
}

func TestAuthenticate_Lockout(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Authenticate(ctx, "alice@example.com", "wrong-password")
		require.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
	}

	_, err := f.svc.Authenticate(ctx, "alice@example.com", "password123")
	assert.Equal(t, errors.KindTooManyRequests, errors.KindOf(err))

	_, err = f.svc.Authenticate(ctx, "bob@example.com", "password123")
	assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err), "lockout is per email")
}

func TestAuthenticate_SuccessResetsFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = f.svc.Authenticate(ctx, "alice@example.com", "wrong-password")
	}
	_, err := f.svc.Authenticate(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = f.svc.Authenticate(ctx, "alice@example.com", "wrong-password")
	}
	_, err = f.svc.Authenticate(ctx, "alice@example.com", "password123")
	assert.NoError(t, err)
}

func TestVerifyToken(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	token, err := f.svc.IssueToken(user)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.VerifyToken(ctx, "garbage")
		assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
	})

	t.Run("inactive", func(t *testing.T) {
		u, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		u.IsActive = false
		require.NoError(t, f.users.Update(ctx, u))
		t.Cleanup(func() {
			u.IsActive = true
			_ = f.users.Update(ctx, u)
		})

		_, err = f.svc.VerifyToken(ctx, token.AccessToken)
		assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
	})

	t.Run("user deleted", func(t *testing.T) {
		require.NoError(t, f.users.Delete(ctx, user.ID))
		_, err := f.svc.VerifyToken(ctx, token.AccessToken)
		assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
		assert.Contains(t, err.Error(), "user not found")
	})
}

func TestRecordFailure(t *testing.T) {
	f := newFixture(t)

	t.Run("counts", func(t *testing.T) {
		f.svc.recordFailure("a@example.com")
		f.svc.recordFailure("a@example.com")
		n, found := f.svc.attempts.Get("a@example.com")
		require.True(t, found)
		assert.Equal(t, 2, n)
	})

	t.Run("expired entry restarts", func(t *testing.T) {
		f.svc.attempts.Set("b@example.com", 2, time.Millisecond)
		time.Sleep(5 * time.Millisecond)

		f.svc.recordFailure("b@example.com")
		n, found := f.svc.attempts.Get("b@example.com")
		require.True(t, found)
		assert.Equal(t, 1, n)
	})

	t.Run("unincrementable entry is replaced", func(t *testing.T) {
		f.svc.attempts.Set("c@example.com", "x", time.Minute)

		f.svc.recordFailure("c@example.com")
		n, found := f.svc.attempts.Get("c@example.com")
		require.True(t, found)
		assert.Equal(t, 1, n)
	})
}
