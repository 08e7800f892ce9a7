package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/postgres"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// courseSeed describes one course of the built-in curriculum.
type courseSeed struct {
	title       string
	description string
	level       string
}

var courseSeeds = []courseSeed{
	{
		title:       "Lift-Off Basics",
		description: "First words and phrases for absolute beginners.",
		level:       "A1",
	},
	{
		title:       "Orbit Conversations",
		description: "Everyday dialogues and the grammar behind them.",
		level:       "A2",
	},
	{
		title:       "Deep Space Fluency",
		description: "Longer texts, opinions, and spontaneous speech.",
		level:       "B1",
	},
}

type trackSeed struct {
	key   domain.TrackKey
	title string
	color string
}

var trackSeeds = []trackSeed{
	{key: domain.TrackVocabulary, title: "Vocabulary", color: "#4F8EF7"},
	{key: domain.TrackGrammar, title: "Grammar", color: "#34C759"},
	{key: domain.TrackListening, title: "Listening", color: "#AF52DE"},
	{key: domain.TrackSpeaking, title: "Speaking", color: "#FF9500"},
}

// wordBank feeds the vocabulary sections. Repeats across missions are fine;
// the vocabulary store deduplicates per user and word on insert.
var wordBank = []domain.VocabularyPayload{
	{Word: "hola", Translation: "hello", Example: "Hola, ¿cómo estás?"},
	{Word: "adiós", Translation: "goodbye", Example: "Adiós, hasta mañana."},
	{Word: "gracias", Translation: "thank you", Example: "Gracias por tu ayuda."},
	{Word: "por favor", Translation: "please", Example: "Un café, por favor."},
	{Word: "casa", Translation: "house", Example: "Mi casa es pequeña."},
	{Word: "comida", Translation: "food", Example: "La comida está lista."},
	{Word: "agua", Translation: "water", Example: "Quiero un vaso de agua."},
	{Word: "libro", Translation: "book", Example: "Este libro es interesante."},
	{Word: "amigo", Translation: "friend", Example: "Pedro es mi mejor amigo."},
	{Word: "trabajo", Translation: "work", Example: "Voy al trabajo en tren."},
	{Word: "tiempo", Translation: "time", Example: "No tengo tiempo hoy."},
	{Word: "ciudad", Translation: "city", Example: "La ciudad es muy grande."},
	{Word: "familia", Translation: "family", Example: "Mi familia vive aquí."},
	{Word: "escuela", Translation: "school", Example: "La escuela abre a las ocho."},
	{Word: "viaje", Translation: "trip", Example: "El viaje dura dos horas."},
	{Word: "dinero", Translation: "money", Example: "No llevo dinero encima."},
	{Word: "mañana", Translation: "tomorrow", Example: "Nos vemos mañana."},
	{Word: "siempre", Translation: "always", Example: "Siempre llego temprano."},
	{Word: "quizás", Translation: "maybe", Example: "Quizás llueva esta tarde."},
	{Word: "mientras", Translation: "while", Example: "Leo mientras espero."},
	{Word: "aunque", Translation: "although", Example: "Salí aunque llovía."},
	{Word: "desarrollar", Translation: "to develop", Example: "Quiero desarrollar mis ideas."},
	{Word: "lograr", Translation: "to achieve", Example: "Logré terminar el curso."},
	{Word: "propuesta", Translation: "proposal", Example: "La propuesta me parece buena."},
}

const (
	missionsPerTrack     = 10
	sectionsPerMission   = 3
	seedMissionDuration  = 10
	seedMissionXPReward  = domain.MissionXPReward
	vocabularyPerMission = 2
)

// seedCurriculum populates the curriculum tables on first boot. It is a
// no-op whenever any course row already exists, so restarts are safe.
func (app *application) seedCurriculum(ctx context.Context) error {
	count, err := app.curriculumWriter.CountCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to count courses: %w", err)
	}
	if count > 0 {
		app.logger.Debug("Curriculum already seeded, skipping",
			"course_count", count)
		return nil
	}

	err = store.RunInTransaction(ctx, app.db, func(ctx context.Context, tx *sql.Tx) error {
		writer := postgres.NewPostgresCurriculumStore(tx, app.logger)
		return seedCourses(ctx, writer)
	})
	if err != nil {
		return fmt.Errorf("failed to seed curriculum: %w", err)
	}

	app.logger.Info("Curriculum seeded",
		"courses", len(courseSeeds),
		"tracks_per_course", len(trackSeeds),
		"missions_per_track", missionsPerTrack)
	return nil
}

func seedCourses(ctx context.Context, writer store.CurriculumWriter) error {
	wordCursor := 0

	for courseIdx, cs := range courseSeeds {
		course, err := domain.NewCourse(cs.title, cs.description, cs.level, courseIdx)
		if err != nil {
			return fmt.Errorf("invalid course seed %q: %w", cs.title, err)
		}
		if err := writer.CreateCourse(ctx, course); err != nil {
			return fmt.Errorf("failed to create course %q: %w", cs.title, err)
		}

		for trackIdx, ts := range trackSeeds {
			track, err := domain.NewTrack(course.ID, ts.key, ts.title, ts.color, trackIdx)
			if err != nil {
				return fmt.Errorf("invalid track seed %q: %w", ts.title, err)
			}
			if err := writer.CreateTrack(ctx, track); err != nil {
				return fmt.Errorf("failed to create track %q: %w", ts.title, err)
			}

			for missionIdx := 0; missionIdx < missionsPerTrack; missionIdx++ {
				title := fmt.Sprintf("%s Mission %d", ts.title, missionIdx+1)
				description := fmt.Sprintf("%s practice for %s, step %d of %d.",
					ts.title, cs.title, missionIdx+1, missionsPerTrack)

				mission, err := domain.NewMission(
					course.ID, track.ID, title, description,
					seedMissionDuration, seedMissionXPReward, missionIdx,
				)
				if err != nil {
					return fmt.Errorf("invalid mission seed %q: %w", title, err)
				}
				if err := writer.CreateMission(ctx, mission); err != nil {
					return fmt.Errorf("failed to create mission %q: %w", title, err)
				}

				if err := seedSections(ctx, writer, mission, ts.key, &wordCursor); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// seedSections writes the three sections of a mission. The section kinds
// follow the track: vocabulary tracks carry word cards, listening tracks
// carry audio, speaking tracks carry prompts, and every mission ends with
// a quiz.
func seedSections(
	ctx context.Context,
	writer store.CurriculumWriter,
	mission *domain.Mission,
	trackKey domain.TrackKey,
	wordCursor *int,
) error {
	for sectionIdx := 0; sectionIdx < sectionsPerMission; sectionIdx++ {
		var (
			key     domain.SectionKey
			title   string
			payload json.RawMessage
			err     error
		)

		isQuiz := sectionIdx == sectionsPerMission-1
		switch {
		case isQuiz:
			key = domain.SectionQuiz
			title = "Checkpoint Quiz"
			payload, err = quizPayload(mission.Title)
		case trackKey == domain.TrackVocabulary:
			key = domain.SectionVocabulary
			word := wordBank[*wordCursor%len(wordBank)]
			*wordCursor++
			title = "Word Card: " + word.Word
			payload, err = json.Marshal(word)
		case trackKey == domain.TrackListening:
			key = domain.SectionAudio
			title = fmt.Sprintf("Listening Clip %d", sectionIdx+1)
			payload, err = audioPayload(mission, sectionIdx)
		case trackKey == domain.TrackSpeaking:
			key = domain.SectionSpeaking
			title = fmt.Sprintf("Speaking Drill %d", sectionIdx+1)
			payload, err = speakingPayload(mission, sectionIdx)
		default:
			key = domain.SectionQuiz
			title = fmt.Sprintf("Grammar Drill %d", sectionIdx+1)
			payload, err = quizPayload(mission.Title)
		}
		if err != nil {
			return fmt.Errorf("failed to build section payload for %q: %w", mission.Title, err)
		}

		section, err := domain.NewSection(mission.ID, key, title, sectionIdx, payload)
		if err != nil {
			return fmt.Errorf("invalid section seed for %q: %w", mission.Title, err)
		}
		if err := writer.CreateSection(ctx, section); err != nil {
			return fmt.Errorf("failed to create section for %q: %w", mission.Title, err)
		}
	}

	return nil
}

func quizPayload(missionTitle string) (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}{
		"question": fmt.Sprintf("Which answer best completes the exercise from %s?", missionTitle),
		"options":  []string{"Option A", "Option B", "Option C", "Option D"},
		"answer":   0,
	})
}

func audioPayload(mission *domain.Mission, sectionIdx int) (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}{
		"audioUrl":   fmt.Sprintf("/audio/%s/%d.mp3", mission.ID, sectionIdx),
		"transcript": "Listen to the clip and answer the question that follows.",
	})
}

func speakingPayload(mission *domain.Mission, sectionIdx int) (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}{
		"prompt":     fmt.Sprintf("Read the phrase aloud and record yourself (drill %d).", sectionIdx+1),
		"minSeconds": 5,
	})
}
