package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"practicecraft/internal/domain/topic"

	"github.com/google/uuid"
)

// TopicStoreForSeed defines the store interface needed by SeedTopics.
type TopicStoreForSeed interface {
	GetBySlug(ctx context.Context, slug string) (topic.Topic, error)
	Save(ctx context.Context, t topic.Topic) error
}

// topicDef defines a single catalog topic to seed.
type topicDef struct {
	Name        string
	Subject     string
	Grade       int
	Description string
}

// catalogTopics returns the built-in curriculum catalog.
func catalogTopics() []topicDef {
	return []topicDef{
		{"Counting to 100", topic.SubjectMath, 1, "Count forwards and backwards within one hundred."},
		{"Addition Basics", topic.SubjectMath, 2, "Single and double digit addition."},
		{"Subtraction Basics", topic.SubjectMath, 2, "Single and double digit subtraction."},
		{"Times Tables", topic.SubjectMath, 3, "Multiplication facts up to 10 × 10."},
		{"Fractions Basics", topic.SubjectMath, 4, "Halves, quarters and equivalent fractions."},
		{"Long Division", topic.SubjectMath, 5, "Dividing multi-digit numbers."},
		{"Decimals and Percentages", topic.SubjectMath, 6, "Converting between fractions, decimals and percentages."},
		{"Ratios and Rates", topic.SubjectMath, 7, "Comparing quantities with ratios."},
		{"Linear Equations", topic.SubjectMath, 8, "Solving one and two step equations."},
		{"Phonics and Sight Words", topic.SubjectEnglish, 1, "Letter sounds and common sight words."},
		{"Sentence Building", topic.SubjectEnglish, 2, "Capital letters, full stops and simple sentences."},
		{"Spelling Patterns", topic.SubjectEnglish, 3, "Common spelling rules and word families."},
		{"Reading Comprehension", topic.SubjectEnglish, 4, "Finding meaning in short passages."},
		{"Grammar and Punctuation", topic.SubjectEnglish, 5, "Parts of speech and punctuation marks."},
		{"Persuasive Writing", topic.SubjectEnglish, 6, "Building arguments with evidence."},
		{"Poetry and Figurative Language", topic.SubjectEnglish, 7, "Similes, metaphors and imagery."},
		{"Essay Structure", topic.SubjectEnglish, 8, "Introductions, paragraphs and conclusions."},
		{"Living Things", topic.SubjectScience, 1, "Plants, animals and what they need."},
		{"Weather and Seasons", topic.SubjectScience, 2, "Observing and describing the weather."},
		{"States of Matter", topic.SubjectScience, 3, "Solids, liquids and gases."},
		{"The Water Cycle", topic.SubjectScience, 4, "Evaporation, condensation and precipitation."},
		{"Forces and Motion", topic.SubjectScience, 5, "Pushes, pulls, friction and gravity."},
		{"The Solar System", topic.SubjectScience, 6, "Planets, moons and orbits."},
		{"Cells and Organisms", topic.SubjectScience, 7, "Cell structure and living systems."},
		{"Chemical Reactions", topic.SubjectScience, 8, "Evidence of chemical change."},
	}
}

// ExecuteSeedTopics loads the built-in catalog. Idempotent: topics that
// already exist (by slug) are skipped.
// PRE: Database is migrated
// POST: Every catalog topic exists in the store
func ExecuteSeedTopics(ctx context.Context, store TopicStoreForSeed) error {
	created := 0
	for _, def := range catalogTopics() {
		slug := topic.Slugify(def.Name)
		if _, err := store.GetBySlug(ctx, slug); err == nil {
			continue // already seeded
		}

		t := topic.Topic{
			ID:          uuid.New().String(),
			Slug:        slug,
			Name:        def.Name,
			Subject:     def.Subject,
			Grade:       def.Grade,
			Description: def.Description,
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("seed topic %s: %w", def.Name, err)
		}
		if err := store.Save(ctx, t); err != nil {
			return fmt.Errorf("seed topic %s: save: %w", def.Name, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seed_event", "event", "topics_seeded", "created", created)
	}
	return nil
}
