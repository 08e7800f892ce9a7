package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// PostgresCurriculumStore implements store.CurriculumStore and
// store.CurriculumWriter over the course/track/mission/section tables.
type PostgresCurriculumStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCurriculumStore creates a new PostgreSQL implementation of the
// CurriculumStore interface. If log is nil, a default logger is used.
func NewPostgresCurriculumStore(db store.DBTX, log *slog.Logger) *PostgresCurriculumStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresCurriculumStore{
		db:     db,
		logger: log.With(slog.String("component", "curriculum_store")),
	}
}

// Ensure PostgresCurriculumStore implements the store interfaces
var (
	_ store.CurriculumStore  = (*PostgresCurriculumStore)(nil)
	_ store.CurriculumWriter = (*PostgresCurriculumStore)(nil)
)

// WithTx implements store.CurriculumStore.WithTx
func (s *PostgresCurriculumStore) WithTx(tx *sql.Tx) store.CurriculumStore {
	return &PostgresCurriculumStore{
		db:     tx,
		logger: s.logger,
	}
}

// ListCourses implements store.CurriculumStore.ListCourses
func (s *PostgresCurriculumStore) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	query := `
		SELECT id, title, description, level, order_index, is_active, created_at
		FROM courses
		WHERE is_active
		ORDER BY order_index
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var courses []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Level,
			&c.OrderIndex, &c.IsActive, &c.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

// GetCourseByID implements store.CurriculumStore.GetCourseByID
// Returns store.ErrCourseNotFound if the course does not exist.
func (s *PostgresCurriculumStore) GetCourseByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `
		SELECT id, title, description, level, order_index, is_active, created_at
		FROM courses
		WHERE id = $1
	`
	return s.scanCourse(s.db.QueryRowContext(ctx, query, id))
}

// GetCourseByOrderIndex implements store.CurriculumStore.GetCourseByOrderIndex
// Returns store.ErrCourseNotFound if no course occupies the slot. Inactive
// courses are excluded so the derived unlock chain matches ListCourses.
func (s *PostgresCurriculumStore) GetCourseByOrderIndex(ctx context.Context, orderIndex int) (*domain.Course, error) {
	query := `
		SELECT id, title, description, level, order_index, is_active, created_at
		FROM courses
		WHERE order_index = $1 AND is_active
	`
	return s.scanCourse(s.db.QueryRowContext(ctx, query, orderIndex))
}

// ListTracks implements store.CurriculumStore.ListTracks
func (s *PostgresCurriculumStore) ListTracks(ctx context.Context, courseID uuid.UUID) ([]*domain.Track, error) {
	query := `
		SELECT id, course_id, key, title, color, order_index
		FROM tracks
		WHERE course_id = $1
		ORDER BY order_index
	`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tracks []*domain.Track
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(
			&t.ID, &t.CourseID, &t.Key, &t.Title, &t.Color, &t.OrderIndex,
		); err != nil {
			return nil, MapError(err)
		}
		tracks = append(tracks, &t)
	}
	return tracks, rows.Err()
}

// ListMissionsByTrack implements store.CurriculumStore.ListMissionsByTrack
func (s *PostgresCurriculumStore) ListMissionsByTrack(ctx context.Context, trackID uuid.UUID) ([]*domain.Mission, error) {
	query := `
		SELECT id, course_id, track_id, title, description, duration_min, xp, order_index
		FROM missions
		WHERE track_id = $1
		ORDER BY order_index
	`
	rows, err := s.db.QueryContext(ctx, query, trackID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var missions []*domain.Mission
	for rows.Next() {
		var m domain.Mission
		if err := rows.Scan(
			&m.ID, &m.CourseID, &m.TrackID, &m.Title, &m.Description,
			&m.DurationMin, &m.XP, &m.OrderIndex,
		); err != nil {
			return nil, MapError(err)
		}
		missions = append(missions, &m)
	}
	return missions, rows.Err()
}

// GetMissionByID implements store.CurriculumStore.GetMissionByID
// Returns store.ErrMissionNotFound if the mission does not exist.
func (s *PostgresCurriculumStore) GetMissionByID(ctx context.Context, id uuid.UUID) (*domain.Mission, error) {
	query := `
		SELECT id, course_id, track_id, title, description, duration_min, xp, order_index
		FROM missions
		WHERE id = $1
	`
	return s.scanMission(s.db.QueryRowContext(ctx, query, id))
}

// GetMissionAtIndex implements store.CurriculumStore.GetMissionAtIndex
// Returns store.ErrMissionNotFound if no mission occupies the slot.
func (s *PostgresCurriculumStore) GetMissionAtIndex(
	ctx context.Context,
	trackID uuid.UUID,
	orderIndex int,
) (*domain.Mission, error) {
	query := `
		SELECT id, course_id, track_id, title, description, duration_min, xp, order_index
		FROM missions
		WHERE track_id = $1 AND order_index = $2
	`
	return s.scanMission(s.db.QueryRowContext(ctx, query, trackID, orderIndex))
}

// CountMissionsByCourse implements store.CurriculumStore.CountMissionsByCourse
func (s *PostgresCurriculumStore) CountMissionsByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM missions WHERE course_id = $1`,
		courseID,
	).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// ListSections implements store.CurriculumStore.ListSections
func (s *PostgresCurriculumStore) ListSections(ctx context.Context, missionID uuid.UUID) ([]*domain.Section, error) {
	query := `
		SELECT id, mission_id, key, title, order_index, payload
		FROM sections
		WHERE mission_id = $1
		ORDER BY order_index
	`
	rows, err := s.db.QueryContext(ctx, query, missionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var sections []*domain.Section
	for rows.Next() {
		var sec domain.Section
		if err := rows.Scan(
			&sec.ID, &sec.MissionID, &sec.Key, &sec.Title, &sec.OrderIndex, &sec.Payload,
		); err != nil {
			return nil, MapError(err)
		}
		sections = append(sections, &sec)
	}
	return sections, rows.Err()
}

// CountCourses implements store.CurriculumWriter.CountCourses
func (s *PostgresCurriculumStore) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CreateCourse implements store.CurriculumWriter.CreateCourse
func (s *PostgresCurriculumStore) CreateCourse(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO courses (id, title, description, level, order_index, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		course.ID, course.Title, course.Description, course.Level,
		course.OrderIndex, course.IsActive, course.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create course",
			slog.String("error", err.Error()),
			slog.String("course_id", course.ID.String()))
		return MapError(err)
	}
	return nil
}

// CreateTrack implements store.CurriculumWriter.CreateTrack
func (s *PostgresCurriculumStore) CreateTrack(ctx context.Context, track *domain.Track) error {
	if err := track.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tracks (id, course_id, key, title, color, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		track.ID, track.CourseID, track.Key, track.Title, track.Color, track.OrderIndex,
	)
	return MapError(err)
}

// CreateMission implements store.CurriculumWriter.CreateMission
func (s *PostgresCurriculumStore) CreateMission(ctx context.Context, mission *domain.Mission) error {
	if err := mission.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO missions (id, course_id, track_id, title, description, duration_min, xp, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		mission.ID, mission.CourseID, mission.TrackID, mission.Title,
		mission.Description, mission.DurationMin, mission.XP, mission.OrderIndex,
	)
	return MapError(err)
}

// CreateSection implements store.CurriculumWriter.CreateSection
func (s *PostgresCurriculumStore) CreateSection(ctx context.Context, section *domain.Section) error {
	if err := section.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO sections (id, mission_id, key, title, order_index, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		section.ID, section.MissionID, section.Key, section.Title,
		section.OrderIndex, []byte(section.Payload),
	)
	return MapError(err)
}

func (s *PostgresCurriculumStore) scanCourse(row *sql.Row) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Level,
		&c.OrderIndex, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrCourseNotFound
		}
		return nil, MapError(err)
	}
	return &c, nil
}

func (s *PostgresCurriculumStore) scanMission(row *sql.Row) (*domain.Mission, error) {
	var m domain.Mission
	err := row.Scan(
		&m.ID, &m.CourseID, &m.TrackID, &m.Title, &m.Description,
		&m.DurationMin, &m.XP, &m.OrderIndex,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrMissionNotFound
		}
		return nil, MapError(err)
	}
	return &m, nil
}
