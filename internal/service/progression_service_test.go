package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// seedCurriculum builds two courses, each with two tracks of two missions,
// and a vocabulary section on every mission of the first track.
func seedCurriculum(t *testing.T) *fakeCurriculum {
	t.Helper()

	curriculum := &fakeCurriculum{}
	for courseIdx := 0; courseIdx < 2; courseIdx++ {
		course, err := domain.NewCourse(
			fmt.Sprintf("Course %d", courseIdx+1),
			"test course",
			"A1",
			courseIdx,
		)
		require.NoError(t, err)
		course.IsActive = true
		curriculum.courses = append(curriculum.courses, course)

		keys := []domain.TrackKey{domain.TrackVocabulary, domain.TrackGrammar}
		for trackIdx, key := range keys {
			track, err := domain.NewTrack(course.ID, key, string(key), "#123456", trackIdx)
			require.NoError(t, err)
			curriculum.tracks = append(curriculum.tracks, track)

			for missionIdx := 0; missionIdx < 2; missionIdx++ {
				mission, err := domain.NewMission(
					course.ID, track.ID,
					fmt.Sprintf("Mission %d-%d-%d", courseIdx, trackIdx, missionIdx),
					"test mission", 10, domain.MissionXPReward, missionIdx,
				)
				require.NoError(t, err)
				curriculum.missions = append(curriculum.missions, mission)

				if key == domain.TrackVocabulary {
					payload, err := json.Marshal(domain.VocabularyPayload{
						Word:        fmt.Sprintf("word-%d-%d", courseIdx, missionIdx),
						Translation: "translation",
					})
					require.NoError(t, err)
					section, err := domain.NewSection(
						mission.ID, domain.SectionVocabulary, "Vocabulary", 0, payload)
					require.NoError(t, err)
					curriculum.sections = append(curriculum.sections, section)
				}
			}
		}
	}
	return curriculum
}

type progressionFixture struct {
	svc          *progressionService
	curriculum   *fakeCurriculum
	progress     *fakeProgressStore
	stats        *fakeStatsStore
	certificates *fakeCertificateStore
	vocabulary   *fakeVocabularyStore
	users        *fakeUserStore
	userID       uuid.UUID
}

func newProgressionFixture(t *testing.T) *progressionFixture {
	t.Helper()

	curriculum := seedCurriculum(t)
	fx := &progressionFixture{
		curriculum:   curriculum,
		progress:     newFakeProgressStore(curriculum),
		stats:        newFakeStatsStore(),
		certificates: newFakeCertificateStore(),
		vocabulary:   newFakeVocabularyStore(),
		users:        newFakeUserStore(),
		userID:       uuid.New(),
	}

	svc := NewProgressionService(
		nil,
		fx.curriculum, fx.progress, fx.stats, fx.certificates, fx.vocabulary, fx.users,
		slog.Default(),
	).(*progressionService)
	svc.runTx = passthroughTx
	svc.timeFunc = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	fx.svc = svc

	stats, err := domain.NewUserStats(fx.userID)
	require.NoError(t, err)
	require.NoError(t, fx.stats.Create(context.Background(), stats))

	return fx
}

// unlockMission creates an unlocked progress row directly.
func (fx *progressionFixture) unlockMission(t *testing.T, missionID uuid.UUID) {
	t.Helper()
	row, err := domain.NewUserMissionProgress(fx.userID, missionID, domain.ProgressUnlocked)
	require.NoError(t, err)
	_, err = fx.progress.CreateIfAbsent(context.Background(), row)
	require.NoError(t, err)
}

// missionAt resolves a mission by course order, track order, and mission
// order within the seeded curriculum.
func (fx *progressionFixture) missionAt(t *testing.T, courseIdx, trackIdx, missionIdx int) *domain.Mission {
	t.Helper()
	ctx := context.Background()
	course, err := fx.curriculum.GetCourseByOrderIndex(ctx, courseIdx)
	require.NoError(t, err)
	tracks, err := fx.curriculum.ListTracks(ctx, course.ID)
	require.NoError(t, err)
	require.Greater(t, len(tracks), trackIdx)
	mission, err := fx.curriculum.GetMissionAtIndex(ctx, tracks[trackIdx].ID, missionIdx)
	require.NoError(t, err)
	return mission
}

func TestSubmitMission_FirstPass(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)

	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 85)
	require.NoError(t, err)

	assert.Equal(t, domain.MissionXPReward, result.XPGained)
	assert.Equal(t, domain.MissionCreditReward, result.CreditsGained)
	assert.Equal(t, domain.MissionXPReward, result.NewTotalXP)
	assert.Equal(t, domain.MissionCreditReward, result.NewTotalCredits)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, domain.ProgressCompleted, result.Status)
	assert.Equal(t, msgMissionPassed, result.Message)
	assert.Empty(t, result.CourseCompletedMessage)

	// The next mission in the same track is unlocked and reported.
	next := fx.missionAt(t, 0, 0, 1)
	require.NotNil(t, result.NextMissionID)
	assert.Equal(t, next.ID, *result.NextMissionID)
	row, err := fx.progress.Get(ctx, fx.userID, next.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressUnlocked, row.Status)

	// The vocabulary section bootstrapped one item.
	count, err := fx.vocabulary.CountByUser(ctx, fx.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitMission_FailedAttempt(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)

	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 40)
	require.NoError(t, err)

	assert.Zero(t, result.XPGained)
	assert.Zero(t, result.CreditsGained)
	assert.Equal(t, domain.ProgressUnlocked, result.Status)
	assert.Equal(t, msgMissionFailed, result.Message)
	assert.Nil(t, result.NextMissionID)

	row, err := fx.progress.Get(ctx, fx.userID, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, 40, row.Score)
}

func TestSubmitMission_RepeatedPassIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)

	_, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 85)
	require.NoError(t, err)

	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 95)
	require.NoError(t, err)

	assert.Zero(t, result.XPGained)
	assert.Zero(t, result.CreditsGained)
	assert.Equal(t, domain.MissionXPReward, result.NewTotalXP)
	assert.Equal(t, domain.MissionCreditReward, result.NewTotalCredits)
	assert.Equal(t, msgMissionRepeated, result.Message)

	// Attempts and score still advance.
	row, err := fx.progress.Get(ctx, fx.userID, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, 95, row.Score)
	assert.Equal(t, domain.ProgressCompleted, row.Status)
}

func TestSubmitMission_CreatesMissingProgressRow(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 1)

	// No prior unlock: the submission creates the row and a passing score
	// completes the mission like any other first pass.
	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 85)
	require.NoError(t, err)

	assert.Equal(t, domain.ProgressCompleted, result.Status)
	assert.Equal(t, domain.MissionXPReward, result.XPGained)
	assert.Equal(t, domain.MissionCreditReward, result.CreditsGained)

	row, err := fx.progress.Get(ctx, fx.userID, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, 85, row.Score)
	assert.Equal(t, domain.ProgressCompleted, row.Status)
}

func TestSubmitMission_FailedAttemptWithoutRow(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 1)

	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 40)
	require.NoError(t, err)

	assert.Zero(t, result.XPGained)
	assert.Zero(t, result.CreditsGained)
	assert.Equal(t, msgMissionFailed, result.Message)

	// The attempt is recorded on the fresh row without granting access.
	row, err := fx.progress.Get(ctx, fx.userID, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, 40, row.Score)
	assert.Equal(t, domain.ProgressLocked, row.Status)
}

func TestSubmitMission_RecreatesMissingStats(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()
	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)

	// A lost stats row must not block the submission.
	delete(fx.stats.rows, fx.userID)

	result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 85)
	require.NoError(t, err)

	assert.Equal(t, domain.MissionXPReward, result.NewTotalXP)
	assert.Equal(t, domain.MissionCreditReward, result.NewTotalCredits)
	assert.Equal(t, 1, result.Streak)

	stats, err := fx.stats.Get(ctx, fx.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionXPReward, stats.XPTotal)
}

func TestSubmitMission_UnknownMission(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	_, err := fx.svc.SubmitMission(context.Background(), fx.userID, uuid.New(), 85)
	assert.ErrorIs(t, err, store.ErrMissionNotFound)
}

func TestSubmitMission_InvalidScore(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)

	_, err := fx.svc.SubmitMission(context.Background(), fx.userID, mission.ID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidScore)
}

// completeCourse passes every mission of the given course in track order.
func (fx *progressionFixture) completeCourse(t *testing.T, courseIdx int) *SubmitResult {
	t.Helper()
	ctx := context.Background()

	var last *SubmitResult
	for trackIdx := 0; trackIdx < 2; trackIdx++ {
		for missionIdx := 0; missionIdx < 2; missionIdx++ {
			mission := fx.missionAt(t, courseIdx, trackIdx, missionIdx)
			fx.unlockMission(t, mission.ID)
			result, err := fx.svc.SubmitMission(ctx, fx.userID, mission.ID, 90)
			require.NoError(t, err)
			last = result
		}
	}
	return last
}

func TestSubmitMission_CourseCompletionCascade(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	last := fx.completeCourse(t, 0)

	assert.NotEmpty(t, last.CourseCompletedMessage)
	// Final mission grants the mission reward plus the course bonus.
	assert.Equal(t, domain.MissionCreditReward+domain.CourseCompletionCredits, last.CreditsGained)
	assert.Equal(t, 4*domain.MissionCreditReward+domain.CourseCompletionCredits, last.NewTotalCredits)

	certs, err := fx.certificates.ListByUser(ctx, fx.userID)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "Course 1", certs[0].Title)

	// The first mission of every track in the next course is unlocked.
	for trackIdx := 0; trackIdx < 2; trackIdx++ {
		first := fx.missionAt(t, 1, trackIdx, 0)
		row, err := fx.progress.Get(ctx, fx.userID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ProgressUnlocked, row.Status)
	}
}

func TestSubmitMission_CourseBonusGrantedOnce(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	last := fx.completeCourse(t, 0)
	require.NotEmpty(t, last.CourseCompletedMessage)

	// Resubmitting the final mission re-evaluates the cascade without a
	// second certificate or bonus. The completion message is still
	// reported so the client can re-render the victory view.
	final := fx.missionAt(t, 0, 1, 1)
	result, err := fx.svc.SubmitMission(ctx, fx.userID, final.ID, 100)
	require.NoError(t, err)

	assert.NotEmpty(t, result.CourseCompletedMessage)
	assert.Zero(t, result.CreditsGained)
	assert.Equal(t, last.NewTotalCredits, result.NewTotalCredits)

	certs, err := fx.certificates.ListByUser(ctx, fx.userID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestSubmitMission_VocabularyDedupe(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	// Point both vocabulary sections of course 0 at the same word.
	payload, err := json.Marshal(domain.VocabularyPayload{Word: "Hello", Translation: "Hola"})
	require.NoError(t, err)
	for _, section := range fx.curriculum.sections {
		section.Payload = payload
	}

	first := fx.missionAt(t, 0, 0, 0)
	second := fx.missionAt(t, 0, 0, 1)
	fx.unlockMission(t, first.ID)
	fx.unlockMission(t, second.ID)

	_, err = fx.svc.SubmitMission(ctx, fx.userID, first.ID, 90)
	require.NoError(t, err)
	_, err = fx.svc.SubmitMission(ctx, fx.userID, second.ID, 90)
	require.NoError(t, err)

	items, err := fx.vocabulary.ListByUser(ctx, fx.userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hello", items[0].Word)
	assert.Equal(t, 1, items[0].Interval)
	assert.InDelta(t, 2.5, items[0].EaseFactor, 0.0001)
}

func TestSubmitMission_StreakBumpsOncePerDay(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	first := fx.missionAt(t, 0, 0, 0)
	second := fx.missionAt(t, 0, 1, 0)
	fx.unlockMission(t, first.ID)
	fx.unlockMission(t, second.ID)

	r1, err := fx.svc.SubmitMission(ctx, fx.userID, first.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 1, r1.Streak)

	r2, err := fx.svc.SubmitMission(ctx, fx.userID, second.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 1, r2.Streak)
}

func TestReconcile_HealsLostUnlocks(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	// Complete course 0, then wipe the rows the cascade created in course 1
	// to simulate a lost unlock event.
	fx.completeCourse(t, 0)
	courseTwo, err := fx.curriculum.GetCourseByOrderIndex(ctx, 1)
	require.NoError(t, err)
	rows, err := fx.progress.ListByUserAndCourse(ctx, fx.userID, courseTwo.ID)
	require.NoError(t, err)
	for _, row := range rows {
		delete(fx.progress.rows, progressKey(row.UserID, row.MissionID))
	}

	require.NoError(t, fx.svc.Reconcile(ctx, fx.userID, courseTwo.ID))

	count, err := fx.progress.CountByCourse(ctx, fx.userID, courseTwo.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Running it again changes nothing.
	require.NoError(t, fx.svc.Reconcile(ctx, fx.userID, courseTwo.ID))
	count, err = fx.progress.CountByCourse(ctx, fx.userID, courseTwo.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReconcile_PreviousCourseIncomplete(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	courseTwo, err := fx.curriculum.GetCourseByOrderIndex(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Reconcile(ctx, fx.userID, courseTwo.ID))

	count, err := fx.progress.CountByCourse(ctx, fx.userID, courseTwo.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReconcile_UnknownCourse(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	err := fx.svc.Reconcile(context.Background(), fx.userID, uuid.New())
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
}

func TestListCourses_DerivedUnlockChain(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	summaries, err := fx.svc.ListCourses(ctx, fx.userID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].IsUnlocked)
	assert.False(t, summaries[0].IsCompleted)
	assert.False(t, summaries[1].IsUnlocked)

	fx.completeCourse(t, 0)

	summaries, err = fx.svc.ListCourses(ctx, fx.userID)
	require.NoError(t, err)
	assert.True(t, summaries[0].IsCompleted)
	assert.Equal(t, 100, summaries[0].ProgressPercent)
	assert.Equal(t, 4, summaries[0].CompletedCount)
	assert.True(t, summaries[1].IsUnlocked)
}

func TestListCourses_InactiveCourseLeavesChain(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	// Deactivating the second course removes it from the listing and the
	// completion cascade finds no successor to unlock.
	second, err := fx.curriculum.GetCourseByOrderIndex(ctx, 1)
	require.NoError(t, err)
	second.IsActive = false

	last := fx.completeCourse(t, 0)
	assert.NotEmpty(t, last.CourseCompletedMessage)

	summaries, err := fx.svc.ListCourses(ctx, fx.userID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].IsCompleted)

	// No unlock rows leaked into the deactivated course.
	rows, err := fx.progress.ListByUserAndCourse(ctx, fx.userID, second.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetCourseTree_AnnotatesProgress(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	mission := fx.missionAt(t, 0, 0, 0)
	fx.unlockMission(t, mission.ID)
	course, err := fx.curriculum.GetCourseByOrderIndex(ctx, 0)
	require.NoError(t, err)

	tree, err := fx.svc.GetCourseTree(ctx, fx.userID, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Tracks, 2)

	assert.Equal(t, domain.ProgressUnlocked, tree.Tracks[0].Missions[0].Status)
	assert.Equal(t, domain.ProgressLocked, tree.Tracks[0].Missions[1].Status)
	assert.Equal(t, domain.ProgressLocked, tree.Tracks[1].Missions[0].Status)
}

func TestGetMission_ReturnsSections(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	mission := fx.missionAt(t, 0, 0, 0)

	detail, err := fx.svc.GetMission(context.Background(), mission.ID)
	require.NoError(t, err)

	assert.Equal(t, mission.Title, detail.Title)
	assert.Equal(t, domain.TrackVocabulary, detail.TrackKey)
	require.Len(t, detail.Sections, 1)
	assert.Equal(t, domain.SectionVocabulary, detail.Sections[0].Key)
}

func TestGetStats_Aggregates(t *testing.T) {
	t.Parallel()

	fx := newProgressionFixture(t)
	ctx := context.Background()

	fx.completeCourse(t, 0)

	stats, err := fx.svc.GetStats(ctx, fx.userID)
	require.NoError(t, err)

	assert.Equal(t, 4*domain.MissionXPReward, stats.XP)
	assert.Equal(t, 4*domain.MissionCreditReward+domain.CourseCompletionCredits, stats.Credits)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, "Cadet", stats.Rank.Name)
	assert.Equal(t, 4, stats.MissionsCompleted)
	assert.Equal(t, 2, stats.WordsLearned)
	assert.Equal(t, 40, stats.MinutesSpent)
	require.Len(t, stats.Certificates, 1)
	assert.Len(t, stats.VocabularyBank, 2)

	earned := make(map[string]bool)
	for _, a := range stats.Achievements {
		earned[a.ID] = a.Earned
	}
	assert.True(t, earned["first_mission"])
	assert.True(t, earned["course_graduate"])
	assert.False(t, earned["ten_missions"])
}
