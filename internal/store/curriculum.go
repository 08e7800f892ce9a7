package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// CurriculumStore is the read-only accessor over the course/track/mission/
// section hierarchy. The curriculum is immutable at runtime; writes happen
// only through CurriculumWriter during seeding.
type CurriculumStore interface {
	// ListCourses returns all active courses in order_index order.
	ListCourses(ctx context.Context) ([]*domain.Course, error)

	// GetCourseByID retrieves a course by its ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetCourseByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// GetCourseByOrderIndex resolves the course at the given position in
	// the course chain. Returns ErrCourseNotFound if no course occupies it.
	GetCourseByOrderIndex(ctx context.Context, orderIndex int) (*domain.Course, error)

	// ListTracks returns a course's tracks in order_index order.
	ListTracks(ctx context.Context, courseID uuid.UUID) ([]*domain.Track, error)

	// ListMissionsByTrack returns a track's missions in order_index order.
	ListMissionsByTrack(ctx context.Context, trackID uuid.UUID) ([]*domain.Mission, error)

	// GetMissionByID retrieves a mission by its ID.
	// Returns ErrMissionNotFound if the mission does not exist.
	GetMissionByID(ctx context.Context, id uuid.UUID) (*domain.Mission, error)

	// GetMissionAtIndex resolves the unique mission at the given slot
	// within a track. Used for "the next mission" (order_index+1) and "the
	// first mission of a track" (order_index 0).
	// Returns ErrMissionNotFound if no mission occupies the slot.
	GetMissionAtIndex(ctx context.Context, trackID uuid.UUID, orderIndex int) (*domain.Mission, error)

	// CountMissionsByCourse returns the total mission count of a course.
	CountMissionsByCourse(ctx context.Context, courseID uuid.UUID) (int, error)

	// ListSections returns a mission's sections in order_index order.
	ListSections(ctx context.Context, missionID uuid.UUID) ([]*domain.Section, error)

	// WithTx returns a new CurriculumStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) CurriculumStore
}

// CurriculumWriter seeds the static curriculum content. Only the startup
// seeder uses it; nothing mutates the hierarchy after that.
type CurriculumWriter interface {
	// CountCourses returns the number of courses, seeded or not.
	CountCourses(ctx context.Context) (int, error)

	// CreateCourse inserts a course.
	CreateCourse(ctx context.Context, course *domain.Course) error

	// CreateTrack inserts a track.
	CreateTrack(ctx context.Context, track *domain.Track) error

	// CreateMission inserts a mission.
	CreateMission(ctx context.Context, mission *domain.Mission) error

	// CreateSection inserts a section.
	CreateSection(ctx context.Context, section *domain.Section) error
}
