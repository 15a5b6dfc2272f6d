package plan

import (
	"strings"

	"planwise/internal/model"
)

// Flatten walks the nested plan once, session by session in document order,
// and assigns every activity its position in the single linear ordering
// across all sessions. It normalizes the type field (lowercase, "read" when
// empty) and lowercases quizStage for quiz activities without validating it
// against a fixed stage set, so novel stage values pass through unchanged.
//
// The input document is annotated in place and returned alongside the flat
// slice. A plan with no sessions flattens to an empty slice, not an error.
func Flatten(doc *model.PlanDocument) (*model.PlanDocument, []model.Activity) {
	if doc == nil || len(doc.Sessions) == 0 {
		return doc, []model.Activity{}
	}

	total := 0
	for _, sess := range doc.Sessions {
		total += len(sess.Activities)
	}

	flat := make([]model.Activity, 0, total)
	next := 0
	for di := range doc.Sessions {
		for ai := range doc.Sessions[di].Activities {
			act := &doc.Sessions[di].Activities[ai]

			act.Type = strings.ToLower(strings.TrimSpace(act.Type))
			if act.Type == "" {
				act.Type = model.ActivityRead
			}
			if act.Type == model.ActivityQuiz {
				act.QuizStage = strings.ToLower(strings.TrimSpace(act.QuizStage))
			}

			act.DayIndex = di
			act.FlatIndex = next
			next++

			flat = append(flat, *act)
		}
	}

	return doc, flat
}

// ForDay returns the slice of flattened activities belonging to one day.
func ForDay(flattened []model.Activity, dayIndex int) []model.Activity {
	out := []model.Activity{}
	for _, act := range flattened {
		if act.DayIndex == dayIndex {
			out = append(out, act)
		}
	}
	return out
}
