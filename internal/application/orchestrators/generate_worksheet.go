package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/topic"
	"practicecraft/internal/domain/worksheet"

	"github.com/google/uuid"
)

// TopicStoreForGenerate defines the topic store interface needed by GenerateWorksheet.
type TopicStoreForGenerate interface {
	GetBySlug(ctx context.Context, slug string) (topic.Topic, error)
}

// ChildStoreForGenerate defines the child store interface needed by GenerateWorksheet.
type ChildStoreForGenerate interface {
	GetByID(ctx context.Context, id string) (child.Child, error)
}

// WorksheetStoreForGenerate defines the worksheet store interface needed by GenerateWorksheet.
type WorksheetStoreForGenerate interface {
	Save(ctx context.Context, w worksheet.Worksheet) error
}

// GenerateWorksheetInput carries input for the orchestrator.
type GenerateWorksheetInput struct {
	ChildID   string
	TopicSlug string
	Subject   string
}

// GenerateWorksheetDeps holds dependencies for GenerateWorksheet.
type GenerateWorksheetDeps struct {
	TopicStore     TopicStoreForGenerate
	ChildStore     ChildStoreForGenerate
	WorksheetStore WorksheetStoreForGenerate
}

var (
	ErrUnknownTopic    = errors.New("topic not found")
	ErrSubjectMismatch = errors.New("topic does not belong to the requested subject")
	ErrChildArchived   = errors.New("cannot generate worksheets for an archived child")
)

// ExecuteGenerateWorksheet builds a practice sheet for a child from a catalog topic.
// Content is deterministic for a given topic and grade so regenerating the
// same selection produces the same sheet.
// PRE: ChildID and TopicSlug are non-empty; subject matches the topic
// POST: A ready worksheet is persisted and its ID returned
func ExecuteGenerateWorksheet(ctx context.Context, input GenerateWorksheetInput, deps GenerateWorksheetDeps) (string, error) {
	if input.ChildID == "" || input.TopicSlug == "" {
		return "", errors.New("child and topic are required")
	}

	c, err := deps.ChildStore.GetByID(ctx, input.ChildID)
	if err != nil {
		return "", fmt.Errorf("load child: %w", err)
	}
	if c.IsArchived() {
		return "", ErrChildArchived
	}

	top, err := deps.TopicStore.GetBySlug(ctx, input.TopicSlug)
	if err != nil {
		return "", ErrUnknownTopic
	}
	if input.Subject != "" && input.Subject != top.Subject {
		return "", ErrSubjectMismatch
	}

	w := worksheet.Worksheet{
		ID:            uuid.New().String(),
		ChildID:       c.ID,
		TopicSlug:     top.Slug,
		Subject:       top.Subject,
		Grade:         top.Grade,
		Title:         fmt.Sprintf("%s Practice (Grade %d)", top.Name, top.Grade),
		Content:       buildWorksheetContent(top),
		QuestionCount: worksheet.DefaultQuestionCount,
		Status:        worksheet.StatusReady,
		CreatedAt:     time.Now(),
	}
	if err := w.Validate(); err != nil {
		return "", err
	}

	if err := deps.WorksheetStore.Save(ctx, w); err != nil {
		w.Status = worksheet.StatusFailed
		slog.Error("worksheet_event", "event", "generate_failed", "child_id", c.ID, "topic", top.Slug, "error", err.Error())
		return "", fmt.Errorf("save worksheet: %w", err)
	}

	slog.Info("worksheet_event", "event", "worksheet_generated", "worksheet_id", w.ID, "child_id", c.ID, "topic", top.Slug)
	return w.ID, nil
}

// buildWorksheetContent renders the markdown question list for a topic.
// The PRNG is seeded from slug+grade, so content is stable across runs.
func buildWorksheetContent(top topic.Topic) string {
	rng := rand.New(rand.NewSource(contentSeed(top.Slug, top.Grade)))

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", top.Name)
	if top.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", top.Description)
	}

	for i := 1; i <= worksheet.DefaultQuestionCount; i++ {
		fmt.Fprintf(&b, "%d. %s\n", i, questionFor(top, i, rng))
	}
	return b.String()
}

func contentSeed(slug string, grade int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", slug, grade)
	return int64(h.Sum64())
}

// questionFor produces one question line scaled to the topic's grade.
func questionFor(top topic.Topic, n int, rng *rand.Rand) string {
	switch top.Subject {
	case topic.SubjectMath:
		scale := top.Grade * 10
		a := rng.Intn(scale) + 1
		c := rng.Intn(scale) + 1
		switch n % 4 {
		case 0:
			return fmt.Sprintf("What is %d × %d?", rng.Intn(top.Grade*3)+2, rng.Intn(9)+2)
		case 1:
			return fmt.Sprintf("What is %d + %d?", a, c)
		case 2:
			return fmt.Sprintf("What is %d − %d?", a+c, c)
		default:
			d := rng.Intn(8) + 2
			return fmt.Sprintf("What is %d ÷ %d?", d*(rng.Intn(top.Grade*2)+1), d)
		}
	case topic.SubjectEnglish:
		prompts := []string{
			"Write a sentence using a word related to *%s*.",
			"Find and correct the spelling mistake: pick any word from your *%s* list and scramble-check it.",
			"Write two words that rhyme, then use one in a sentence about *%s*.",
			"Underline the nouns in a sentence you write about *%s*.",
			"Write a short question a friend could answer about *%s*.",
		}
		return fmt.Sprintf(prompts[rng.Intn(len(prompts))], strings.ToLower(top.Name))
	default: // science
		prompts := []string{
			"Name one thing you already know about *%s* and one thing you want to find out.",
			"Draw or describe an example of *%s* you have seen at home or school.",
			"True or false, then explain your answer: *%s* works the same everywhere on Earth.",
			"What would you measure to learn more about *%s*? How would you measure it?",
			"Explain *%s* to a younger student in two sentences.",
		}
		return fmt.Sprintf(prompts[rng.Intn(len(prompts))], strings.ToLower(top.Name))
	}
}
