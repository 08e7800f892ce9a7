package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Curriculum validation errors
var (
	ErrEmptyCourseID      = errors.New("course ID cannot be empty")
	ErrEmptyCourseTitle   = errors.New("course title cannot be empty")
	ErrEmptyTrackID       = errors.New("track ID cannot be empty")
	ErrInvalidTrackKey    = errors.New("invalid track key")
	ErrEmptyMissionID     = errors.New("mission ID cannot be empty")
	ErrEmptyMissionTitle  = errors.New("mission title cannot be empty")
	ErrNegativeOrderIndex = errors.New("order index cannot be negative")
	ErrEmptySectionID     = errors.New("section ID cannot be empty")
	ErrInvalidSectionKey  = errors.New("invalid section key")
)

// TrackKey identifies the skill lane a track belongs to.
type TrackKey string

// Skill lanes within a course.
const (
	TrackVocabulary TrackKey = "vocabulary"
	TrackGrammar    TrackKey = "grammar"
	TrackListening  TrackKey = "listening"
	TrackSpeaking   TrackKey = "speaking"
)

// SectionKey identifies the content kind of a mission section.
type SectionKey string

// Content kinds carried by mission sections.
const (
	SectionVocabulary SectionKey = "vocabulary"
	SectionQuiz       SectionKey = "quiz"
	SectionAudio      SectionKey = "audio"
	SectionSpeaking   SectionKey = "speaking"
)

// Course is the top-level curriculum unit. Courses form a single ordered
// chain: OrderIndex is dense and zero-based, and course n is accessible
// only once course n-1 is completed.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	OrderIndex  int       `json:"order_index"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Track is a skill lane inside a course. OrderIndex is unique within the
// owning course.
type Track struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	Key        TrackKey  `json:"key"`
	Title      string    `json:"title"`
	Color      string    `json:"color"`
	OrderIndex int       `json:"order_index"`
}

// Mission is the atomic, gradable learning unit. OrderIndex is dense and
// zero-based within the owning track; the mission at OrderIndex+1 is "the
// next mission" in that track.
type Mission struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	TrackID     uuid.UUID `json:"track_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_min"`
	XP          int       `json:"xp"`
	OrderIndex  int       `json:"order_index"`
}

// Section is a single static content item inside a mission. The payload is
// a free-form JSON document whose shape depends on the section key.
// Sections are immutable once seeded.
type Section struct {
	ID         uuid.UUID       `json:"id"`
	MissionID  uuid.UUID       `json:"mission_id"`
	Key        SectionKey      `json:"key"`
	Title      string          `json:"title"`
	OrderIndex int             `json:"order_index"`
	Payload    json.RawMessage `json:"payload"`
}

// VocabularyPayload is the expected payload shape of a vocabulary-kind
// section. Sections missing word or translation are skipped by the
// vocabulary scheduler rather than rejected.
type VocabularyPayload struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
}

// NewCourse creates a Course with a fresh ID and creation timestamp.
// Returns an error if validation fails.
func NewCourse(title, description, level string, orderIndex int) (*Course, error) {
	course := &Course{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Level:       level,
		OrderIndex:  orderIndex,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	return course, nil
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if c.Title == "" {
		return ErrEmptyCourseTitle
	}
	if c.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}
	return nil
}

// NewTrack creates a Track inside the given course.
// Returns an error if validation fails.
func NewTrack(courseID uuid.UUID, key TrackKey, title, color string, orderIndex int) (*Track, error) {
	track := &Track{
		ID:         uuid.New(),
		CourseID:   courseID,
		Key:        key,
		Title:      title,
		Color:      color,
		OrderIndex: orderIndex,
	}

	if err := track.Validate(); err != nil {
		return nil, err
	}

	return track, nil
}

// Validate checks if the Track has valid data.
func (t *Track) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTrackID
	}
	if t.CourseID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if !isValidTrackKey(t.Key) {
		return ErrInvalidTrackKey
	}
	if t.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}
	return nil
}

// NewMission creates a Mission inside the given course and track.
// Returns an error if validation fails.
func NewMission(
	courseID, trackID uuid.UUID,
	title, description string,
	durationMin, xp, orderIndex int,
) (*Mission, error) {
	mission := &Mission{
		ID:          uuid.New(),
		CourseID:    courseID,
		TrackID:     trackID,
		Title:       title,
		Description: description,
		DurationMin: durationMin,
		XP:          xp,
		OrderIndex:  orderIndex,
	}

	if err := mission.Validate(); err != nil {
		return nil, err
	}

	return mission, nil
}

// Validate checks if the Mission has valid data.
func (m *Mission) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMissionID
	}
	if m.CourseID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if m.TrackID == uuid.Nil {
		return ErrEmptyTrackID
	}
	if m.Title == "" {
		return ErrEmptyMissionTitle
	}
	if m.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}
	return nil
}

// NewSection creates a Section inside the given mission.
// Returns an error if validation fails.
func NewSection(
	missionID uuid.UUID,
	key SectionKey,
	title string,
	orderIndex int,
	payload json.RawMessage,
) (*Section, error) {
	section := &Section{
		ID:         uuid.New(),
		MissionID:  missionID,
		Key:        key,
		Title:      title,
		OrderIndex: orderIndex,
		Payload:    payload,
	}

	if err := section.Validate(); err != nil {
		return nil, err
	}

	return section, nil
}

// Validate checks if the Section has valid data.
func (s *Section) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySectionID
	}
	if s.MissionID == uuid.Nil {
		return ErrEmptyMissionID
	}
	if !isValidSectionKey(s.Key) {
		return ErrInvalidSectionKey
	}
	if s.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}
	if len(s.Payload) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(s.Payload, &js); err != nil {
			return ErrInvalidFormat
		}
	}
	return nil
}

// ErrInvalidFormat is returned when data is not in the expected format.
var ErrInvalidFormat = errors.New("invalid format")

func isValidTrackKey(key TrackKey) bool {
	switch key {
	case TrackVocabulary, TrackGrammar, TrackListening, TrackSpeaking:
		return true
	default:
		return false
	}
}

func isValidSectionKey(key SectionKey) bool {
	switch key {
	case SectionVocabulary, SectionQuiz, SectionAudio, SectionSpeaking:
		return true
	default:
		return false
	}
}
