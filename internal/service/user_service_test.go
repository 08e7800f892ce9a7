package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/service/auth"
	"github.com/orbita-learn/orbita-api/internal/store"
)

type userFixture struct {
	svc        *userService
	users      *fakeUserStore
	stats      *fakeStatsStore
	progress   *fakeProgressStore
	curriculum *fakeCurriculum
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	curriculum := seedCurriculum(t)
	fx := &userFixture{
		curriculum: curriculum,
		users:      newFakeUserStore(),
		stats:      newFakeStatsStore(),
		progress:   newFakeProgressStore(curriculum),
	}

	svc := NewUserService(
		nil,
		fx.users, fx.stats, fx.progress, fx.curriculum,
		auth.NewBcryptVerifier(),
		slog.Default(),
	).(*userService)
	svc.runTx = passthroughTx
	svc.timeFunc = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	fx.svc = svc

	return fx
}

// registerUser creates a user through the fake store with a real bcrypt
// hash so Authenticate can verify the password.
func (fx *userFixture) registerUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, email, "Test User", password)
	require.NoError(t, err)

	// The fake user store does not hash; set the hash the way the SQL
	// store would.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.HashedPassword = string(hash)
	stored.Password = ""
	require.NoError(t, fx.users.Update(ctx, stored))

	return stored
}

func TestRegister_CreatesStatsAndUnlocks(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, "learner@example.com", "Test User", "password123")
	require.NoError(t, err)

	stats, err := fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.XPTotal)
	assert.Zero(t, stats.Streak)
	assert.Nil(t, stats.LastActivityDate)

	// Exactly one mission per track of the first course is unlocked.
	first, err := fx.curriculum.GetCourseByOrderIndex(ctx, 0)
	require.NoError(t, err)
	count, err := fx.progress.CountByCourse(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	second, err := fx.curriculum.GetCourseByOrderIndex(ctx, 1)
	require.NoError(t, err)
	count, err = fx.progress.CountByCourse(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Register(ctx, "learner@example.com", "Test User", "password123")
	require.NoError(t, err)

	_, err = fx.svc.Register(ctx, "learner@example.com", "Other User", "password456")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	fx.registerUser(t, "learner@example.com", "password123")

	_, err := fx.svc.Authenticate(context.Background(), "learner@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	_, err := fx.svc.Authenticate(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_NoGapKeepsStreak(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()
	user := fx.registerUser(t, "learner@example.com", "password123")

	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	stats, err := fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	stats.Streak = 5
	stats.LastActivityDate = &yesterday
	require.NoError(t, fx.stats.Update(ctx, stats))

	result, err := fx.svc.Authenticate(ctx, "learner@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.StreakNoticeNone, result.StreakNotice)

	stats, err = fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Streak)
	assert.Equal(t, yesterday, *stats.LastActivityDate)
}

func TestAuthenticate_GapWithFreezeSavesStreak(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()
	user := fx.registerUser(t, "learner@example.com", "password123")

	user.GrantItem(domain.ItemStreakFreeze, 2)
	require.NoError(t, fx.users.Update(ctx, user))

	threeDaysAgo := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	stats, err := fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	stats.Streak = 5
	stats.LastActivityDate = &threeDaysAgo
	require.NoError(t, fx.stats.Update(ctx, stats))

	result, err := fx.svc.Authenticate(ctx, "learner@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.StreakNoticeSaved, result.StreakNotice)

	stats, err = fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Streak)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, *stats.LastActivityDate)

	// Exactly one token was consumed.
	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Inventory[domain.ItemStreakFreeze])
}

func TestAuthenticate_GapWithoutFreezeResetsStreak(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()
	user := fx.registerUser(t, "learner@example.com", "password123")

	threeDaysAgo := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	stats, err := fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	stats.Streak = 5
	stats.LastActivityDate = &threeDaysAgo
	require.NoError(t, fx.stats.Update(ctx, stats))

	result, err := fx.svc.Authenticate(ctx, "learner@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.StreakNoticeLost, result.StreakNotice)

	stats, err = fx.stats.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Streak)
}

func TestSetActiveBadge(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()
	user := fx.registerUser(t, "learner@example.com", "password123")

	require.NoError(t, fx.svc.SetActiveBadge(ctx, user.ID, "astronaut"))

	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "astronaut", stored.ActiveBadge)
}

func TestGrantItem(t *testing.T) {
	t.Parallel()

	fx := newUserFixture(t)
	ctx := context.Background()
	user := fx.registerUser(t, "learner@example.com", "password123")

	updated, err := fx.svc.GrantItem(ctx, user.ID, domain.ItemStreakFreeze, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Inventory[domain.ItemStreakFreeze])

	_, err = fx.svc.GrantItem(ctx, user.ID, domain.ItemStreakFreeze, 0)
	assert.ErrorIs(t, err, ErrInvalidItemGrant)

	_, err = fx.svc.GrantItem(ctx, user.ID, "", 1)
	assert.ErrorIs(t, err, ErrInvalidItemGrant)
}
