package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Activity types
const (
	ActivityRead  = "read"
	ActivityQuiz  = "quiz"
	ActivityGuide = "guide"
)

// Quiz stages: the Bloom ladder plus the cumulative steps.
const (
	StageReading            = "reading"
	StageRemember           = "remember"
	StageUnderstand         = "understand"
	StageApply              = "apply"
	StageAnalyze            = "analyze"
	StageCumulativeQuiz     = "cumulativequiz"
	StageCumulativeRevision = "cumulativerevision"
)

// Plan levels
const (
	LevelMastery    = "mastery"
	LevelRevision   = "revision"
	LevelGlance     = "glance"
	LevelOnboarding = "onboarding"
)

// PlanDocument is one adaptive plan as served by the backend. The client
// treats it as immutable per fetch and replaces it wholesale on re-fetch.
type PlanDocument struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	BookID    string    `json:"bookId" bson:"bookId"`
	Level     string    `json:"level" bson:"level"`
	Sessions  []Session `json:"sessions" bson:"sessions"`
	CreatedAt FlexTime  `json:"createdAt" bson:"createdAt"`
}

// Session is one study day within a plan.
type Session struct {
	SessionLabel SessionLabel `json:"sessionLabel" bson:"sessionLabel"`
	Activities   []Activity   `json:"activities" bson:"activities"`
}

// SessionLabel is the 1-based day number. The backend serializes it as
// either a string or a number; both decode into the string form.
type SessionLabel string

func (l *SessionLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = SessionLabel(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = SessionLabel(n.String())
	return nil
}

// Day parses the label into its 1-based day number, 0 if unparseable.
func (l SessionLabel) Day() int {
	n, err := strconv.Atoi(string(l))
	if err != nil {
		return 0
	}
	return n
}

// Activity is one schedulable unit in a plan: a reading, a quiz stage, or a
// revision/guide step. FlatIndex and DayIndex are assigned by the flattener
// and are stable only within one fetch of the plan.
type Activity struct {
	ActivityID     string `json:"activityId" bson:"activityId"`
	Type           string `json:"type" bson:"type"`
	QuizStage      string `json:"quizStage,omitempty" bson:"quizStage,omitempty"`
	SubChapterID   string `json:"subChapterId" bson:"subChapterId"`
	SubChapterName string `json:"subChapterName,omitempty" bson:"subChapterName,omitempty"`
	ChapterName    string `json:"chapterName,omitempty" bson:"chapterName,omitempty"`
	BookName       string `json:"bookName,omitempty" bson:"bookName,omitempty"`
	Subject        string `json:"subject,omitempty" bson:"subject,omitempty"`
	Grouping       string `json:"grouping,omitempty" bson:"grouping,omitempty"`

	TimeNeeded       float64 `json:"timeNeeded" bson:"timeNeeded"` // minutes
	Completed        bool    `json:"completed" bson:"completed"`
	Deferred         bool    `json:"deferred" bson:"deferred"`
	AggregatorStatus string  `json:"aggregatorStatus,omitempty" bson:"aggregatorStatus,omitempty"`

	FlatIndex int `json:"flatIndex" bson:"flatIndex"`
	DayIndex  int `json:"dayIndex" bson:"dayIndex"`
}

// NavCursor is the persisted navigation position for one (user, plan) pair.
type NavCursor struct {
	UserID       string    `json:"userId" bson:"userId"`
	PlanID       string    `json:"planId" bson:"planId"`
	CurrentIndex int       `json:"currentIndex" bson:"currentIndex"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
