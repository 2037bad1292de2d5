package worksheet_test

import (
	"testing"
	"time"

	"practicecraft/internal/domain/worksheet"
)

// TestWorksheet_Validate tests validation of Worksheet.
func TestWorksheet_Validate(t *testing.T) {
	valid := worksheet.Worksheet{
		ID:            "w1",
		ChildID:       "c1",
		TopicSlug:     "fractions-basics",
		Subject:       "math",
		Grade:         3,
		Title:         "Fractions Basics Practice",
		Content:       "## Questions",
		QuestionCount: 10,
		Status:        worksheet.StatusReady,
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(w *worksheet.Worksheet)
		wantErr bool
	}{
		{name: "valid", mutate: func(w *worksheet.Worksheet) {}, wantErr: false},
		{name: "missing child", mutate: func(w *worksheet.Worksheet) { w.ChildID = "" }, wantErr: true},
		{name: "missing topic", mutate: func(w *worksheet.Worksheet) { w.TopicSlug = "" }, wantErr: true},
		{name: "missing subject", mutate: func(w *worksheet.Worksheet) { w.Subject = "" }, wantErr: true},
		{name: "missing title", mutate: func(w *worksheet.Worksheet) { w.Title = "" }, wantErr: true},
		{name: "bad status", mutate: func(w *worksheet.Worksheet) { w.Status = "done" }, wantErr: true},
		{name: "zero questions", mutate: func(w *worksheet.Worksheet) { w.QuestionCount = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			err := w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
