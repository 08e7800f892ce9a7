package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service/auth"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// LoginResult carries the authenticated user together with the outcome of
// the session-start streak evaluation.
type LoginResult struct {
	User         *domain.User
	StreakNotice domain.StreakNotice
}

// UserService provides account operations: registration, authentication
// with streak session-start handling, and profile mutations.
type UserService interface {
	// Register creates a user, their stats row, and the unlocked progress
	// rows for the first mission of every track of the first course, all in
	// one transaction.
	// Returns store.ErrEmailExists if the email is taken and domain
	// validation errors for bad input.
	Register(ctx context.Context, email, name, password string) (*domain.User, error)

	// Authenticate checks the credentials and runs the session-start streak
	// rule: a gap larger than one day consumes a streak-freeze token if the
	// user holds one, or resets the streak.
	// Returns ErrInvalidCredentials on unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (*LoginResult, error)

	// GetProfile retrieves the user's profile.
	// Returns store.ErrUserNotFound if the user does not exist.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SetActiveBadge updates the badge shown on the user's profile.
	SetActiveBadge(ctx context.Context, userID uuid.UUID, badge string) error

	// GrantItem adds count instances of an item to the user's inventory.
	// Returns ErrInvalidItemGrant for an empty item id or non-positive count.
	GrantItem(ctx context.Context, userID uuid.UUID, itemID string, count int) (*domain.User, error)
}

// userService implements UserService.
type userService struct {
	db       *sql.DB
	users    store.UserStore
	stats    store.StatsStore
	progress store.ProgressStore

	// curriculum resolves the first course and its tracks for the
	// registration unlock.
	curriculum store.CurriculumStore

	verifier auth.PasswordVerifier
	logger   *slog.Logger
	runTx    txRunner
	timeFunc func() time.Time
}

// Verify interface implementation at compile time.
var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService.
// Panics if any dependency is nil, since that is a programming error.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	stats store.StatsStore,
	progress store.ProgressStore,
	curriculum store.CurriculumStore,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) UserService {
	if users == nil || stats == nil || progress == nil || curriculum == nil {
		panic("user service requires all stores")
	}
	if verifier == nil {
		panic("user service requires a password verifier")
	}
	if log == nil {
		panic("user service requires a logger")
	}
	return &userService{
		db:         db,
		users:      users,
		stats:      stats,
		progress:   progress,
		curriculum: curriculum,
		verifier:   verifier,
		logger:     log.With(slog.String("component", "user_service")),
		runTx:      store.RunInTransaction,
		timeFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// Register implements UserService.Register.
func (s *userService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, name, password)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		userStore := s.users.WithTx(tx)
		statsStore := s.stats.WithTx(tx)
		progressStore := s.progress.WithTx(tx)
		curriculum := s.curriculum.WithTx(tx)

		if err := userStore.Create(ctx, user); err != nil {
			return err
		}

		stats, err := domain.NewUserStats(user.ID)
		if err != nil {
			return err
		}
		if err := statsStore.Create(ctx, stats); err != nil {
			return fmt.Errorf("failed to create stats: %w", err)
		}

		first, err := curriculum.GetCourseByOrderIndex(ctx, 0)
		if err != nil {
			if errors.Is(err, store.ErrCourseNotFound) {
				// Empty curriculum; the reconciler unlocks later once
				// content is seeded.
				return nil
			}
			return fmt.Errorf("failed to resolve first course: %w", err)
		}
		if _, err := unlockFirstTrackMissions(ctx, curriculum, progressStore, user.ID, first.ID); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register existing email",
				slog.String("email", email))
			return nil, err
		}
		log.Error("failed to register user",
			slog.String("error", err.Error()),
			slog.String("email", email))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("registered user",
		slog.String("user_id", user.ID.String()))

	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	notice := domain.StreakNoticeNone
	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		statsStore := s.stats.WithTx(tx)
		userStore := s.users.WithTx(tx)

		stats, err := statsStore.GetForUpdate(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrStatsNotFound) {
				// No activity yet, nothing to evaluate.
				return nil
			}
			return fmt.Errorf("failed to load stats: %w", err)
		}

		freezeAvailable := user.Inventory[domain.ItemStreakFreeze] > 0
		sessionNotice, consumed := stats.StartSession(s.timeFunc(), freezeAvailable)
		if sessionNotice == domain.StreakNoticeNone {
			return nil
		}

		if consumed {
			if err := user.ConsumeItem(domain.ItemStreakFreeze); err != nil {
				return err
			}
			if err := userStore.Update(ctx, user); err != nil {
				return fmt.Errorf("failed to save inventory: %w", err)
			}
		}
		if err := statsStore.Update(ctx, stats); err != nil {
			return fmt.Errorf("failed to save stats: %w", err)
		}
		notice = sessionNotice
		return nil
	})
	if err != nil {
		log.Error("failed to apply session-start streak rule",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if notice != domain.StreakNoticeNone {
		log.Info("streak evaluated at session start",
			slog.String("user_id", user.ID.String()),
			slog.String("notice", string(notice)))
	}

	return &LoginResult{User: user, StreakNotice: notice}, nil
}

// GetProfile implements UserService.GetProfile.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetActiveBadge implements UserService.SetActiveBadge.
func (s *userService) SetActiveBadge(ctx context.Context, userID uuid.UUID, badge string) error {
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		userStore := s.users.WithTx(tx)
		user, err := userStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user.SetActiveBadge(badge)
		return userStore.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to set badge: %w", err)
	}
	return nil
}

// GrantItem implements UserService.GrantItem.
func (s *userService) GrantItem(ctx context.Context, userID uuid.UUID, itemID string, count int) (*domain.User, error) {
	if itemID == "" || count <= 0 {
		return nil, ErrInvalidItemGrant
	}

	var user *domain.User
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		userStore := s.users.WithTx(tx)
		var err error
		user, err = userStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user.GrantItem(itemID, count)
		return userStore.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to grant item: %w", err)
	}
	return user, nil
}
