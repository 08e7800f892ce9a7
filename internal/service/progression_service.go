package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// Messages returned to the learner after a submission.
const (
	msgMissionPassed    = "Mission passed"
	msgMissionFailed    = "Score below pass threshold, try again"
	msgMissionRepeated  = "Mission already completed"
	courseCompletedText = "Congratulations! You completed %s"
)

// CourseSummary is one entry of the course listing: curriculum fields plus
// the user's derived access and completion state.
type CourseSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Level           string    `json:"level"`
	OrderIndex      int       `json:"orderIndex"`
	IsUnlocked      bool      `json:"isUnlocked"`
	IsCompleted     bool      `json:"isCompleted"`
	ProgressPercent int       `json:"progressPercent"`
	TotalMissions   int       `json:"totalMissions"`
	CompletedCount  int       `json:"completedCount"`
}

// MissionNode is a mission as rendered inside a course tree, carrying the
// user's progress status. Missions without a progress row render as locked.
type MissionNode struct {
	ID     uuid.UUID             `json:"id"`
	Title  string                `json:"title"`
	XP     int                   `json:"xp"`
	Order  int                   `json:"order"`
	Status domain.ProgressStatus `json:"status"`
}

// TrackTree is a track with its ordered missions.
type TrackTree struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Key      domain.TrackKey `json:"key"`
	Color    string          `json:"color"`
	Missions []MissionNode   `json:"missions"`
}

// CourseTree is the full per-user view of one course.
type CourseTree struct {
	Course *domain.Course `json:"course"`
	Tracks []TrackTree    `json:"tracks"`
}

// SectionView is a section as rendered in a mission detail.
type SectionView struct {
	Key     domain.SectionKey `json:"key"`
	Title   string            `json:"title"`
	Payload json.RawMessage   `json:"payload"`
}

// MissionDetail is the content of a single mission. It carries no user
// state; access control happens at submission time.
type MissionDetail struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TrackKey    domain.TrackKey   `json:"trackKey"`
	Sections    []SectionView     `json:"sections"`
}

// SubmitResult reports everything a submission changed. XPGained and
// CreditsGained are zero on failed or repeated attempts; the totals always
// reflect the post-submission ledger.
type SubmitResult struct {
	XPGained               int                   `json:"xpGained"`
	CreditsGained          int                   `json:"creditsGained"`
	NewTotalXP             int                   `json:"newTotalXp"`
	NewTotalCredits        int                   `json:"newTotalCredits"`
	Streak                 int                   `json:"streak"`
	Status                 domain.ProgressStatus `json:"status"`
	Message                string                `json:"message"`
	CourseCompletedMessage string                `json:"courseCompletedMessage,omitempty"`
	NextMissionID          *uuid.UUID            `json:"nextMissionId,omitempty"`
}

// Achievement is a derived badge computed from the user's stats. Nothing is
// persisted; the thresholds live in achievementRules.
type Achievement struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Earned bool   `json:"earned"`
}

// StatsSummary is the aggregate view behind the stats endpoint.
type StatsSummary struct {
	XP                int                      `json:"xp"`
	Credits           int                      `json:"credits"`
	Streak            int                      `json:"streak"`
	Rank              domain.Rank              `json:"rank"`
	MissionsCompleted int                      `json:"missionsCompleted"`
	WordsLearned      int                      `json:"wordsLearned"`
	MinutesSpent      int                      `json:"minutesSpent"`
	Achievements      []Achievement            `json:"achievements"`
	Certificates      []*domain.Certificate    `json:"certificates"`
	VocabularyBank    []*domain.VocabularyItem `json:"vocabularyBank"`
}

// ProgressionService exposes the learner-facing progression operations.
type ProgressionService interface {
	// ListCourses returns all courses with the user's derived unlock chain:
	// course n is unlocked once course n-1 is fully completed.
	ListCourses(ctx context.Context, userID uuid.UUID) ([]CourseSummary, error)

	// GetCourseTree returns the course with its tracks and missions,
	// annotated with the user's progress. It runs Reconcile first so a lost
	// unlock cascade heals before rendering.
	// Returns store.ErrCourseNotFound if the course does not exist.
	GetCourseTree(ctx context.Context, userID, courseID uuid.UUID) (*CourseTree, error)

	// GetMission returns a mission's content, sections included. No user
	// context; locked missions are still readable content.
	// Returns store.ErrMissionNotFound if the mission does not exist.
	GetMission(ctx context.Context, missionID uuid.UUID) (*MissionDetail, error)

	// SubmitMission records a scored attempt and, on the first passing
	// attempt, completes the mission and fires the reward, streak,
	// vocabulary, and unlock cascades. The course-completion cascade runs
	// after every submission and is idempotent. A missing progress row is
	// created on the fly; the attempt is recorded regardless of outcome.
	// Everything happens inside one transaction.
	// Returns store.ErrMissionNotFound for an unknown mission and
	// domain.ErrInvalidScore for a score outside 0..100.
	SubmitMission(ctx context.Context, userID, missionID uuid.UUID, score int) (*SubmitResult, error)

	// Reconcile re-derives whether the course preceding courseID is fully
	// completed and, if so and the user has zero progress rows in courseID,
	// unlocks the first mission of each of its tracks. Idempotent and safe
	// to run concurrently.
	Reconcile(ctx context.Context, userID, courseID uuid.UUID) error

	// GetStats aggregates the user's ledger, streak, rank, completion
	// counters, derived achievements, certificates, and vocabulary bank.
	GetStats(ctx context.Context, userID uuid.UUID) (*StatsSummary, error)
}

// txRunner matches store.RunInTransaction; injectable for tests.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// progressionService implements ProgressionService on top of the SQL stores.
type progressionService struct {
	db           *sql.DB
	curriculum   store.CurriculumStore
	progress     store.ProgressStore
	stats        store.StatsStore
	certificates store.CertificateStore
	vocabulary   store.VocabularyStore
	users        store.UserStore
	logger       *slog.Logger
	runTx        txRunner
	timeFunc     func() time.Time
}

// Verify interface implementation at compile time.
var _ ProgressionService = (*progressionService)(nil)

// NewProgressionService creates a new ProgressionService.
// Panics if any dependency is nil, since that is a programming error.
func NewProgressionService(
	db *sql.DB,
	curriculum store.CurriculumStore,
	progress store.ProgressStore,
	stats store.StatsStore,
	certificates store.CertificateStore,
	vocabulary store.VocabularyStore,
	users store.UserStore,
	log *slog.Logger,
) ProgressionService {
	if curriculum == nil || progress == nil || stats == nil ||
		certificates == nil || vocabulary == nil || users == nil {
		panic("progression service requires all stores")
	}
	if log == nil {
		panic("progression service requires a logger")
	}
	return &progressionService{
		db:           db,
		curriculum:   curriculum,
		progress:     progress,
		stats:        stats,
		certificates: certificates,
		vocabulary:   vocabulary,
		users:        users,
		logger:       log.With(slog.String("component", "progression_service")),
		runTx:        store.RunInTransaction,
		timeFunc:     func() time.Time { return time.Now().UTC() },
	}
}

// ListCourses implements ProgressionService.ListCourses.
func (s *progressionService) ListCourses(ctx context.Context, userID uuid.UUID) ([]CourseSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	courses, err := s.curriculum.ListCourses(ctx)
	if err != nil {
		return nil, NewProgressionError("list_courses", "failed to list courses", err)
	}

	summaries := make([]CourseSummary, 0, len(courses))
	prevCompleted := true
	for _, course := range courses {
		total, err := s.curriculum.CountMissionsByCourse(ctx, course.ID)
		if err != nil {
			return nil, NewProgressionError("list_courses", "failed to count missions", err)
		}
		completed, err := s.progress.CountCompletedByCourse(ctx, userID, course.ID)
		if err != nil {
			return nil, NewProgressionError("list_courses", "failed to count completions", err)
		}

		isCompleted := total > 0 && completed >= total
		percent := 0
		if total > 0 {
			percent = completed * 100 / total
		}

		summaries = append(summaries, CourseSummary{
			ID:              course.ID,
			Title:           course.Title,
			Level:           course.Level,
			OrderIndex:      course.OrderIndex,
			IsUnlocked:      prevCompleted,
			IsCompleted:     isCompleted,
			ProgressPercent: percent,
			TotalMissions:   total,
			CompletedCount:  completed,
		})
		prevCompleted = isCompleted
	}

	log.Debug("listed courses",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(summaries)))

	return summaries, nil
}

// Reconcile implements ProgressionService.Reconcile.
func (s *progressionService) Reconcile(ctx context.Context, userID, courseID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		curriculum := s.curriculum.WithTx(tx)
		progress := s.progress.WithTx(tx)

		course, err := curriculum.GetCourseByID(ctx, courseID)
		if err != nil {
			return err
		}

		// Course 0 has no predecessor; registration unlocks it, and the
		// reconciler heals it the same way if that unlock was lost.
		if course.OrderIndex > 0 {
			prev, err := curriculum.GetCourseByOrderIndex(ctx, course.OrderIndex-1)
			if err != nil {
				return fmt.Errorf("failed to resolve previous course: %w", err)
			}
			total, err := curriculum.CountMissionsByCourse(ctx, prev.ID)
			if err != nil {
				return fmt.Errorf("failed to count previous course missions: %w", err)
			}
			completed, err := progress.CountCompletedByCourse(ctx, userID, prev.ID)
			if err != nil {
				return fmt.Errorf("failed to count previous course completions: %w", err)
			}
			if total == 0 || completed < total {
				return nil
			}
		}

		count, err := progress.CountByCourse(ctx, userID, courseID)
		if err != nil {
			return fmt.Errorf("failed to count progress rows: %w", err)
		}
		if count > 0 {
			return nil
		}

		unlocked, err := unlockFirstTrackMissions(ctx, curriculum, progress, userID, courseID)
		if err != nil {
			return err
		}
		if unlocked > 0 {
			log.Info("reconciled lost unlock cascade",
				slog.String("user_id", userID.String()),
				slog.String("course_id", courseID.String()),
				slog.Int("missions_unlocked", unlocked))
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return err
		}
		return NewProgressionError("reconcile", "failed to reconcile course access", err)
	}
	return nil
}

// GetCourseTree implements ProgressionService.GetCourseTree.
func (s *progressionService) GetCourseTree(ctx context.Context, userID, courseID uuid.UUID) (*CourseTree, error) {
	if err := s.Reconcile(ctx, userID, courseID); err != nil {
		return nil, err
	}

	course, err := s.curriculum.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	statusByMission := make(map[uuid.UUID]domain.ProgressStatus)
	rows, err := s.progress.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, NewProgressionError("get_course_tree", "failed to load progress", err)
	}
	for _, row := range rows {
		statusByMission[row.MissionID] = row.Status
	}

	tracks, err := s.curriculum.ListTracks(ctx, courseID)
	if err != nil {
		return nil, NewProgressionError("get_course_tree", "failed to list tracks", err)
	}

	tree := &CourseTree{Course: course, Tracks: make([]TrackTree, 0, len(tracks))}
	for _, track := range tracks {
		missions, err := s.curriculum.ListMissionsByTrack(ctx, track.ID)
		if err != nil {
			return nil, NewProgressionError("get_course_tree", "failed to list missions", err)
		}
		nodes := make([]MissionNode, 0, len(missions))
		for _, mission := range missions {
			status, ok := statusByMission[mission.ID]
			if !ok {
				status = domain.ProgressLocked
			}
			nodes = append(nodes, MissionNode{
				ID:     mission.ID,
				Title:  mission.Title,
				XP:     mission.XP,
				Order:  mission.OrderIndex,
				Status: status,
			})
		}
		tree.Tracks = append(tree.Tracks, TrackTree{
			ID:       track.ID,
			Title:    track.Title,
			Key:      track.Key,
			Color:    track.Color,
			Missions: nodes,
		})
	}

	return tree, nil
}

// GetMission implements ProgressionService.GetMission.
func (s *progressionService) GetMission(ctx context.Context, missionID uuid.UUID) (*MissionDetail, error) {
	mission, err := s.curriculum.GetMissionByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	// The track carries the skill key; tracks are few, so scan the
	// course's list instead of a dedicated lookup.
	tracks, err := s.curriculum.ListTracks(ctx, mission.CourseID)
	if err != nil {
		return nil, NewProgressionError("get_mission", "failed to list tracks", err)
	}
	var trackKey domain.TrackKey
	for _, track := range tracks {
		if track.ID == mission.TrackID {
			trackKey = track.Key
			break
		}
	}
	if trackKey == "" {
		return nil, NewProgressionError("get_mission", "mission has no owning track", store.ErrTrackNotFound)
	}

	sections, err := s.curriculum.ListSections(ctx, missionID)
	if err != nil {
		return nil, NewProgressionError("get_mission", "failed to list sections", err)
	}

	detail := &MissionDetail{
		ID:          mission.ID,
		Title:       mission.Title,
		Description: mission.Description,
		TrackKey:    trackKey,
		Sections:    make([]SectionView, 0, len(sections)),
	}
	for _, section := range sections {
		detail.Sections = append(detail.Sections, SectionView{
			Key:     section.Key,
			Title:   section.Title,
			Payload: section.Payload,
		})
	}
	return detail, nil
}

// SubmitMission implements ProgressionService.SubmitMission.
func (s *progressionService) SubmitMission(
	ctx context.Context,
	userID, missionID uuid.UUID,
	score int,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if score < 0 || score > 100 {
		return nil, domain.ErrInvalidScore
	}

	var result *SubmitResult
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		curriculum := s.curriculum.WithTx(tx)
		progressStore := s.progress.WithTx(tx)
		statsStore := s.stats.WithTx(tx)
		certStore := s.certificates.WithTx(tx)
		vocabStore := s.vocabulary.WithTx(tx)

		mission, err := curriculum.GetMissionByID(ctx, missionID)
		if err != nil {
			return err
		}

		// Row lock serializes concurrent submissions for this pair.
		progress, err := progressStore.GetForUpdate(ctx, userID, missionID)
		if err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return fmt.Errorf("failed to load progress: %w", err)
			}
			// First submission without a prior unlock: the row is created
			// on the fly and the attempt recorded like any other.
			row, err := domain.NewUserMissionProgress(userID, missionID, domain.ProgressLocked)
			if err != nil {
				return err
			}
			if _, err := progressStore.CreateIfAbsent(ctx, row); err != nil {
				return fmt.Errorf("failed to create progress: %w", err)
			}
			progress, err = progressStore.GetForUpdate(ctx, userID, missionID)
			if err != nil {
				return fmt.Errorf("failed to load progress: %w", err)
			}
		}

		wasCompleted := progress.Status == domain.ProgressCompleted
		if err := progress.RecordAttempt(score); err != nil {
			return err
		}

		now := s.timeFunc()
		firstPass := !wasCompleted && score >= domain.PassThreshold

		stats, err := statsStore.GetForUpdate(ctx, userID)
		if err != nil {
			if !errors.Is(err, store.ErrStatsNotFound) {
				return fmt.Errorf("failed to load stats: %w", err)
			}
			// Registration creates the row; a lost one is recreated here
			// so the submission still lands.
			stats, err = domain.NewUserStats(userID)
			if err != nil {
				return err
			}
			if err := statsStore.Create(ctx, stats); err != nil {
				return fmt.Errorf("failed to create stats: %w", err)
			}
		}
		statsDirty := false

		var nextMissionID *uuid.UUID
		if firstPass {
			if err := progress.Complete(domain.MissionXPReward); err != nil {
				return err
			}
			if err := stats.ApplyReward(domain.MissionXPReward, domain.MissionCreditReward); err != nil {
				return err
			}
			stats.RecordCompletion(now)
			statsDirty = true

			if err := s.bootstrapVocabulary(ctx, curriculum, vocabStore, userID, missionID); err != nil {
				return err
			}

			next, err := curriculum.GetMissionAtIndex(ctx, mission.TrackID, mission.OrderIndex+1)
			switch {
			case err == nil:
				row, err := domain.NewUserMissionProgress(userID, next.ID, domain.ProgressUnlocked)
				if err != nil {
					return err
				}
				if _, err := progressStore.CreateIfAbsent(ctx, row); err != nil {
					return fmt.Errorf("failed to unlock next mission: %w", err)
				}
				nextMissionID = &next.ID
			case errors.Is(err, store.ErrMissionNotFound):
				// Last mission of the track.
			default:
				return fmt.Errorf("failed to resolve next mission: %w", err)
			}
		}

		if err := progressStore.Update(ctx, progress); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		// Course-completion cascade, evaluated on every submission.
		courseMessage, bonusCredits, err := s.applyCourseCompletion(
			ctx, curriculum, progressStore, certStore, userID, mission.CourseID)
		if err != nil {
			return err
		}
		if bonusCredits > 0 {
			if err := stats.ApplyReward(0, bonusCredits); err != nil {
				return err
			}
			statsDirty = true
		}

		if statsDirty {
			if err := statsStore.Update(ctx, stats); err != nil {
				return fmt.Errorf("failed to save stats: %w", err)
			}
		}

		message := msgMissionFailed
		switch {
		case firstPass:
			message = msgMissionPassed
		case wasCompleted:
			message = msgMissionRepeated
		}

		gainedXP, gainedCredits := 0, bonusCredits
		if firstPass {
			gainedXP = domain.MissionXPReward
			gainedCredits += domain.MissionCreditReward
		}

		result = &SubmitResult{
			XPGained:               gainedXP,
			CreditsGained:          gainedCredits,
			NewTotalXP:             stats.XPTotal,
			NewTotalCredits:        stats.Credits,
			Streak:                 stats.Streak,
			Status:                 progress.Status,
			Message:                message,
			CourseCompletedMessage: courseMessage,
			NextMissionID:          nextMissionID,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrMissionNotFound) ||
			errors.Is(err, domain.ErrInvalidScore) {
			return nil, err
		}
		log.Error("failed to submit mission",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("mission_id", missionID.String()))
		return nil, NewProgressionError("submit", "failed to process submission", err)
	}

	log.Debug("processed mission submission",
		slog.String("user_id", userID.String()),
		slog.String("mission_id", missionID.String()),
		slog.Int("score", score),
		slog.Int("xp_gained", result.XPGained),
		slog.String("status", string(result.Status)))

	return result, nil
}

// bootstrapVocabulary creates a vocabulary item for every word/translation
// pair exposed by the mission's vocabulary sections. Existing items for the
// same word are left untouched.
func (s *progressionService) bootstrapVocabulary(
	ctx context.Context,
	curriculum store.CurriculumStore,
	vocabStore store.VocabularyStore,
	userID, missionID uuid.UUID,
) error {
	sections, err := curriculum.ListSections(ctx, missionID)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	for _, section := range sections {
		if section.Key != domain.SectionVocabulary {
			continue
		}
		var payload domain.VocabularyPayload
		if err := json.Unmarshal(section.Payload, &payload); err != nil {
			// Malformed seeded content; skip the section rather than
			// failing the submission.
			s.logger.Warn("skipping malformed vocabulary payload",
				slog.String("section_id", section.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if payload.Word == "" || payload.Translation == "" {
			continue
		}
		item, err := domain.NewVocabularyItem(userID, payload.Word, payload.Translation, payload.Example)
		if err != nil {
			return fmt.Errorf("failed to build vocabulary item: %w", err)
		}
		if _, err := vocabStore.CreateIfAbsent(ctx, item); err != nil {
			return fmt.Errorf("failed to save vocabulary item: %w", err)
		}
	}
	return nil
}

// applyCourseCompletion issues the certificate and next-course unlocks when
// every mission of the course is completed. The certificate existence check
// makes the whole cascade idempotent; the credit bonus is returned to the
// caller so it lands in the same stats update as the mission reward.
func (s *progressionService) applyCourseCompletion(
	ctx context.Context,
	curriculum store.CurriculumStore,
	progressStore store.ProgressStore,
	certStore store.CertificateStore,
	userID, courseID uuid.UUID,
) (message string, bonusCredits int, err error) {
	total, err := curriculum.CountMissionsByCourse(ctx, courseID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to count course missions: %w", err)
	}
	completed, err := progressStore.CountCompletedByCourse(ctx, userID, courseID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to count course completions: %w", err)
	}
	if total == 0 || completed < total {
		return "", 0, nil
	}

	course, err := curriculum.GetCourseByID(ctx, courseID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load course: %w", err)
	}

	// Replaying the final mission still reports the completion, so the
	// client can re-render the victory view. Only the bonus is one-shot.
	message = fmt.Sprintf(courseCompletedText, course.Title)

	exists, err := certStore.ExistsForTitle(ctx, userID, course.Title)
	if err != nil {
		return "", 0, fmt.Errorf("failed to check certificate: %w", err)
	}
	if !exists {
		cert, err := domain.NewCertificate(userID, course.Title, course.Level)
		if err != nil {
			return "", 0, err
		}
		if err := certStore.Create(ctx, cert); err != nil {
			// A concurrent submission may have won the race; the unique
			// constraint keeps the certificate single.
			if !errors.Is(err, store.ErrCertificateExists) {
				return "", 0, fmt.Errorf("failed to create certificate: %w", err)
			}
		} else {
			bonusCredits = domain.CourseCompletionCredits
		}
	}

	next, err := curriculum.GetCourseByOrderIndex(ctx, course.OrderIndex+1)
	switch {
	case err == nil:
		if _, err := unlockFirstTrackMissions(ctx, curriculum, progressStore, userID, next.ID); err != nil {
			return "", 0, err
		}
	case errors.Is(err, store.ErrCourseNotFound):
		// Final course of the chain.
	default:
		return "", 0, fmt.Errorf("failed to resolve next course: %w", err)
	}

	return message, bonusCredits, nil
}

// GetStats implements ProgressionService.GetStats.
func (s *progressionService) GetStats(ctx context.Context, userID uuid.UUID) (*StatsSummary, error) {
	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrStatsNotFound) {
			return nil, NewProgressionError("get_stats", "failed to load stats", err)
		}
		// Registration creates the row; a missing one renders as zeroes
		// instead of failing the whole endpoint.
		stats = &domain.UserStats{UserID: userID}
	}

	missionsCompleted, err := s.progress.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, NewProgressionError("get_stats", "failed to count completions", err)
	}
	minutesSpent, err := s.progress.SumCompletedDuration(ctx, userID)
	if err != nil {
		return nil, NewProgressionError("get_stats", "failed to sum durations", err)
	}
	wordsLearned, err := s.vocabulary.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewProgressionError("get_stats", "failed to count vocabulary", err)
	}
	certificates, err := s.certificates.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewProgressionError("get_stats", "failed to list certificates", err)
	}
	bank, err := s.vocabulary.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewProgressionError("get_stats", "failed to list vocabulary", err)
	}

	return &StatsSummary{
		XP:                stats.XPTotal,
		Credits:           stats.Credits,
		Streak:            stats.Streak,
		Rank:              stats.Rank(),
		MissionsCompleted: missionsCompleted,
		WordsLearned:      wordsLearned,
		MinutesSpent:      minutesSpent,
		Achievements:      deriveAchievements(stats, missionsCompleted, wordsLearned, len(certificates)),
		Certificates:      certificates,
		VocabularyBank:    bank,
	}, nil
}

// achievementRules are the derived badge thresholds, evaluated on read.
var achievementRules = []struct {
	id    string
	title string
	test  func(stats *domain.UserStats, missions, words, certs int) bool
}{
	{"first_mission", "First Mission", func(_ *domain.UserStats, missions, _, _ int) bool {
		return missions >= 1
	}},
	{"ten_missions", "Ten Missions", func(_ *domain.UserStats, missions, _, _ int) bool {
		return missions >= 10
	}},
	{"week_streak", "Week Streak", func(stats *domain.UserStats, _, _, _ int) bool {
		return stats.Streak >= 7
	}},
	{"wordsmith", "Wordsmith", func(_ *domain.UserStats, _, words, _ int) bool {
		return words >= 25
	}},
	{"course_graduate", "Course Graduate", func(_ *domain.UserStats, _, _, certs int) bool {
		return certs >= 1
	}},
}

// deriveAchievements evaluates every achievement rule against the user's
// current counters.
func deriveAchievements(stats *domain.UserStats, missions, words, certs int) []Achievement {
	achievements := make([]Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		achievements = append(achievements, Achievement{
			ID:     rule.id,
			Title:  rule.title,
			Earned: rule.test(stats, missions, words, certs),
		})
	}
	return achievements
}

// unlockFirstTrackMissions creates an unlocked progress row for the mission
// at order index 0 of every track in the course, skipping rows that already
// exist. Returns the number of rows actually inserted.
func unlockFirstTrackMissions(
	ctx context.Context,
	curriculum store.CurriculumStore,
	progressStore store.ProgressStore,
	userID, courseID uuid.UUID,
) (int, error) {
	tracks, err := curriculum.ListTracks(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to list tracks: %w", err)
	}

	inserted := 0
	for _, track := range tracks {
		first, err := curriculum.GetMissionAtIndex(ctx, track.ID, 0)
		if err != nil {
			if errors.Is(err, store.ErrMissionNotFound) {
				continue
			}
			return inserted, fmt.Errorf("failed to resolve first mission: %w", err)
		}
		row, err := domain.NewUserMissionProgress(userID, first.ID, domain.ProgressUnlocked)
		if err != nil {
			return inserted, err
		}
		created, err := progressStore.CreateIfAbsent(ctx, row)
		if err != nil {
			return inserted, fmt.Errorf("failed to unlock first mission: %w", err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}
