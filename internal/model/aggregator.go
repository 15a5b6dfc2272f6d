package model

// Attempt is one quiz or revision attempt recorded by the aggregator.
type Attempt struct {
	AttemptNumber int      `json:"attemptNumber" bson:"attemptNumber"`
	Score         string   `json:"score,omitempty" bson:"score,omitempty"`
	Timestamp     FlexTime `json:"timestamp" bson:"timestamp"`
}

// ConceptStat is the pass/fail outcome for one concept within one attempt.
type ConceptStat struct {
	ConceptName string `json:"conceptName" bson:"conceptName"`
	Passed      bool   `json:"passed" bson:"passed"`
}

// AttemptConceptStats is the full per-concept breakdown of one attempt.
type AttemptConceptStats struct {
	AttemptNumber int           `json:"attemptNumber" bson:"attemptNumber"`
	ConceptStats  []ConceptStat `json:"conceptStats" bson:"conceptStats"`
}

// QuizStageData is the aggregator rollup for one Bloom stage of a subchapter.
type QuizStageData struct {
	QuizAttempts            []Attempt             `json:"quizAttempts" bson:"quizAttempts"`
	RevisionAttempts        []Attempt             `json:"revisionAttempts" bson:"revisionAttempts"`
	AllAttemptsConceptStats []AttemptConceptStats `json:"allAttemptsConceptStats" bson:"allAttemptsConceptStats"`
	Concepts                []Concept             `json:"concepts" bson:"concepts"`
}

// StageTaskInfo is the lock/status entry for one stage of a subchapter.
type StageTaskInfo struct {
	StageLabel string `json:"stageLabel" bson:"stageLabel"`
	Status     string `json:"status" bson:"status"`
	Locked     bool   `json:"locked" bson:"locked"`
}

// ReadingSummary is the aggregator's view of reading progress.
type ReadingSummary struct {
	Completed bool    `json:"completed" bson:"completed"`
	Percent   float64 `json:"percent" bson:"percent"`
}

// AggregatorBlob is the per-subchapter status rollup returned by the
// backend. The store only ever replaces or shallow-merges whole blobs; no
// field is mutated in place after a batch commits.
type AggregatorBlob struct {
	SubChapterID   string                   `json:"subChapterId" bson:"subChapterId"`
	QuizStagesData map[string]QuizStageData `json:"quizStagesData,omitempty" bson:"quizStagesData,omitempty"`
	TaskInfo       []StageTaskInfo          `json:"taskInfo,omitempty" bson:"taskInfo,omitempty"`
	ReadingSummary *ReadingSummary          `json:"readingSummary,omitempty" bson:"readingSummary,omitempty"`
	Concepts       []Concept                `json:"concepts,omitempty" bson:"concepts,omitempty"`
}

// StageData returns the rollup for one stage, zero value if absent.
func (b *AggregatorBlob) StageData(stage string) QuizStageData {
	if b == nil || b.QuizStagesData == nil {
		return QuizStageData{}
	}
	return b.QuizStagesData[stage]
}

// Concept is one discrete learning objective tied to a subchapter, tracked
// individually for mastery.
type Concept struct {
	ConceptName  string `json:"conceptName" bson:"conceptName"`
	SubChapterID string `json:"subChapterId" bson:"subChapterId"`
	Book         string `json:"book,omitempty" bson:"book,omitempty"`
	Subject      string `json:"subject,omitempty" bson:"subject,omitempty"`
	Grouping     string `json:"grouping,omitempty" bson:"grouping,omitempty"`
	Chapter      string `json:"chapter,omitempty" bson:"chapter,omitempty"`
	SubChapter   string `json:"subChapter,omitempty" bson:"subChapter,omitempty"`
}

// SubChapterRow is one deduplicated catalog entry with the denormalized
// location labels the filter UIs need.
type SubChapterRow struct {
	SubChapterID string `json:"subChapterId" bson:"subChapterId"`
	Book         string `json:"book" bson:"book"`
	Subject      string `json:"subject" bson:"subject"`
	Grouping     string `json:"grouping" bson:"grouping"`
	Chapter      string `json:"chapter" bson:"chapter"`
	SubChapter   string `json:"subChapter" bson:"subChapter"`
}
