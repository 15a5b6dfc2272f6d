package model

import "time"

// TaskStatus is the render-ready state of one task card.
type TaskStatus string

const (
	TaskLoading    TaskStatus = "loading"
	TaskNotStarted TaskStatus = "notstarted"
	TaskPartial    TaskStatus = "partial"
	TaskCompleted  TaskStatus = "completed"
)

// Concept mastery verdicts produced by folding attempt history.
const (
	ConceptPass = "PASS"
	ConceptFail = "FAIL"
)

// AttemptRef is one attempt reduced to what the UI shows: its label
// ("Q1", "R2", ...) and its calendar day.
type AttemptRef struct {
	Label     string    `json:"label"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
}

// AttemptBuckets partitions attempt history around the session date.
type AttemptBuckets struct {
	Before []AttemptRef `json:"before"`
	Today  []AttemptRef `json:"today"`
	After  []AttemptRef `json:"after"`
}

// Task is the ephemeral view model for one activity card. It is recomputed
// on every request from (Activity, AggregatorBlob, elapsed time) and never
// persisted.
type Task struct {
	Activity Activity   `json:"activity"`
	StageKey string     `json:"stageKey"`
	Status   TaskStatus `json:"status"`

	Pct           int `json:"pct"` // 0-100
	Mastered      int `json:"mastered"`
	TotalConcepts int `json:"totalConcepts"`

	ElapsedSeconds int64 `json:"elapsedSeconds"`

	AttemptsSoFar []string       `json:"attemptsSoFar"`
	Buckets       AttemptBuckets `json:"buckets"`
}
