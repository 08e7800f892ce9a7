package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// passthroughTx runs the transaction function with a nil *sql.Tx so the
// in-memory fakes below can stand in for the SQL stores. Their WithTx
// methods return the fake itself.
func passthroughTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeCurriculum holds a seeded curriculum in memory.
type fakeCurriculum struct {
	courses  []*domain.Course
	tracks   []*domain.Track
	missions []*domain.Mission
	sections []*domain.Section
}

var _ store.CurriculumStore = (*fakeCurriculum)(nil)

func (f *fakeCurriculum) ListCourses(_ context.Context) ([]*domain.Course, error) {
	var out []*domain.Course
	for _, c := range f.courses {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCurriculum) GetCourseByID(_ context.Context, id uuid.UUID) (*domain.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrCourseNotFound
}

func (f *fakeCurriculum) GetCourseByOrderIndex(_ context.Context, orderIndex int) (*domain.Course, error) {
	for _, c := range f.courses {
		if c.OrderIndex == orderIndex && c.IsActive {
			return c, nil
		}
	}
	return nil, store.ErrCourseNotFound
}

func (f *fakeCurriculum) ListTracks(_ context.Context, courseID uuid.UUID) ([]*domain.Track, error) {
	var out []*domain.Track
	for _, t := range f.tracks {
		if t.CourseID == courseID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCurriculum) ListMissionsByTrack(_ context.Context, trackID uuid.UUID) ([]*domain.Mission, error) {
	var out []*domain.Mission
	for _, m := range f.missions {
		if m.TrackID == trackID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCurriculum) GetMissionByID(_ context.Context, id uuid.UUID) (*domain.Mission, error) {
	for _, m := range f.missions {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, store.ErrMissionNotFound
}

func (f *fakeCurriculum) GetMissionAtIndex(_ context.Context, trackID uuid.UUID, orderIndex int) (*domain.Mission, error) {
	for _, m := range f.missions {
		if m.TrackID == trackID && m.OrderIndex == orderIndex {
			return m, nil
		}
	}
	return nil, store.ErrMissionNotFound
}

func (f *fakeCurriculum) CountMissionsByCourse(_ context.Context, courseID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.missions {
		if m.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCurriculum) ListSections(_ context.Context, missionID uuid.UUID) ([]*domain.Section, error) {
	var out []*domain.Section
	for _, s := range f.sections {
		if s.MissionID == missionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCurriculum) WithTx(_ *sql.Tx) store.CurriculumStore { return f }

// fakeProgressStore keeps progress rows keyed by (user, mission).
type fakeProgressStore struct {
	rows map[string]*domain.UserMissionProgress

	// missionsByID resolves course membership for the count queries.
	missionsByID map[uuid.UUID]*domain.Mission
}

var _ store.ProgressStore = (*fakeProgressStore)(nil)

func newFakeProgressStore(curriculum *fakeCurriculum) *fakeProgressStore {
	byID := make(map[uuid.UUID]*domain.Mission)
	for _, m := range curriculum.missions {
		byID[m.ID] = m
	}
	return &fakeProgressStore{
		rows:         make(map[string]*domain.UserMissionProgress),
		missionsByID: byID,
	}
}

func progressKey(userID, missionID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", userID, missionID)
}

func (f *fakeProgressStore) Get(_ context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error) {
	row, ok := f.rows[progressKey(userID, missionID)]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProgressStore) GetForUpdate(ctx context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error) {
	return f.Get(ctx, userID, missionID)
}

func (f *fakeProgressStore) Create(_ context.Context, progress *domain.UserMissionProgress) error {
	key := progressKey(progress.UserID, progress.MissionID)
	if _, ok := f.rows[key]; ok {
		return store.ErrProgressExists
	}
	copied := *progress
	f.rows[key] = &copied
	return nil
}

func (f *fakeProgressStore) CreateIfAbsent(_ context.Context, progress *domain.UserMissionProgress) (bool, error) {
	key := progressKey(progress.UserID, progress.MissionID)
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	copied := *progress
	f.rows[key] = &copied
	return true, nil
}

func (f *fakeProgressStore) Update(_ context.Context, progress *domain.UserMissionProgress) error {
	key := progressKey(progress.UserID, progress.MissionID)
	if _, ok := f.rows[key]; !ok {
		return store.ErrProgressNotFound
	}
	copied := *progress
	f.rows[key] = &copied
	return nil
}

func (f *fakeProgressStore) ListByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) ([]*domain.UserMissionProgress, error) {
	var out []*domain.UserMissionProgress
	for _, row := range f.rows {
		mission := f.missionsByID[row.MissionID]
		if row.UserID == userID && mission != nil && mission.CourseID == courseID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeProgressStore) CountByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	rows, _ := f.ListByUserAndCourse(ctx, userID, courseID)
	return len(rows), nil
}

func (f *fakeProgressStore) CountCompletedByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	rows, _ := f.ListByUserAndCourse(ctx, userID, courseID)
	n := 0
	for _, row := range rows {
		if row.Status == domain.ProgressCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeProgressStore) CountCompletedByUser(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID && row.Status == domain.ProgressCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeProgressStore) SumCompletedDuration(_ context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, row := range f.rows {
		if row.UserID == userID && row.Status == domain.ProgressCompleted {
			if mission := f.missionsByID[row.MissionID]; mission != nil {
				sum += mission.DurationMin
			}
		}
	}
	return sum, nil
}

func (f *fakeProgressStore) WithTx(_ *sql.Tx) store.ProgressStore { return f }

// fakeStatsStore keeps one stats row per user.
type fakeStatsStore struct {
	rows map[uuid.UUID]*domain.UserStats
}

var _ store.StatsStore = (*fakeStatsStore)(nil)

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{rows: make(map[uuid.UUID]*domain.UserStats)}
}

func (f *fakeStatsStore) Create(_ context.Context, stats *domain.UserStats) error {
	if _, ok := f.rows[stats.UserID]; ok {
		return store.ErrDuplicate
	}
	copied := *stats
	f.rows[stats.UserID] = &copied
	return nil
}

func (f *fakeStatsStore) Get(_ context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	row, ok := f.rows[userID]
	if !ok {
		return nil, store.ErrStatsNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeStatsStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return f.Get(ctx, userID)
}

func (f *fakeStatsStore) Update(_ context.Context, stats *domain.UserStats) error {
	if _, ok := f.rows[stats.UserID]; !ok {
		return store.ErrStatsNotFound
	}
	copied := *stats
	f.rows[stats.UserID] = &copied
	return nil
}

func (f *fakeStatsStore) WithTx(_ *sql.Tx) store.StatsStore { return f }

// fakeCertificateStore keeps certificates keyed by (user, title).
type fakeCertificateStore struct {
	rows map[string]*domain.Certificate
}

var _ store.CertificateStore = (*fakeCertificateStore)(nil)

func newFakeCertificateStore() *fakeCertificateStore {
	return &fakeCertificateStore{rows: make(map[string]*domain.Certificate)}
}

func (f *fakeCertificateStore) Create(_ context.Context, cert *domain.Certificate) error {
	key := fmt.Sprintf("%s/%s", cert.UserID, cert.Title)
	if _, ok := f.rows[key]; ok {
		return store.ErrCertificateExists
	}
	copied := *cert
	f.rows[key] = &copied
	return nil
}

func (f *fakeCertificateStore) ExistsForTitle(_ context.Context, userID uuid.UUID, title string) (bool, error) {
	_, ok := f.rows[fmt.Sprintf("%s/%s", userID, title)]
	return ok, nil
}

func (f *fakeCertificateStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Certificate, error) {
	var out []*domain.Certificate
	for _, cert := range f.rows {
		if cert.UserID == userID {
			copied := *cert
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeCertificateStore) WithTx(_ *sql.Tx) store.CertificateStore { return f }

// fakeVocabularyStore keeps vocabulary items keyed by (user, word).
type fakeVocabularyStore struct {
	rows map[string]*domain.VocabularyItem
}

var _ store.VocabularyStore = (*fakeVocabularyStore)(nil)

func newFakeVocabularyStore() *fakeVocabularyStore {
	return &fakeVocabularyStore{rows: make(map[string]*domain.VocabularyItem)}
}

func (f *fakeVocabularyStore) CreateIfAbsent(_ context.Context, item *domain.VocabularyItem) (bool, error) {
	key := fmt.Sprintf("%s/%s", item.UserID, item.Word)
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	copied := *item
	f.rows[key] = &copied
	return true, nil
}

func (f *fakeVocabularyStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.VocabularyItem, error) {
	var out []*domain.VocabularyItem
	for _, item := range f.rows {
		if item.UserID == userID {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

func (f *fakeVocabularyStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	items, _ := f.ListByUser(ctx, userID)
	return len(items), nil
}

func (f *fakeVocabularyStore) WithTx(_ *sql.Tx) store.VocabularyStore { return f }

// fakeUserStore keeps users in memory. It does not hash passwords; tests
// that need a hashed password set HashedPassword directly.
type fakeUserStore struct {
	rows map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{rows: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.rows {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.rows[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, row := range f.rows {
		if row.Email == email {
			copied := *row
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.rows[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	f.rows[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore { return f }
