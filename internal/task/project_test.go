package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"planwise/internal/model"
)

func ft(iso string) model.FlexTime {
	parsed, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		panic(err)
	}
	return model.FlexTime{Time: parsed}
}

func quizActivity() model.Activity {
	return model.Activity{
		ActivityID:   "a-quiz",
		Type:         model.ActivityQuiz,
		QuizStage:    model.StageRemember,
		SubChapterID: "sub-1",
	}
}

func TestFoldConceptAttemptsStickyPass(t *testing.T) {
	attempts := []model.AttemptConceptStats{
		{AttemptNumber: 1, ConceptStats: []model.ConceptStat{{ConceptName: "A", Passed: false}}},
		{AttemptNumber: 2, ConceptStats: []model.ConceptStat{{ConceptName: "A", Passed: true}}},
		{AttemptNumber: 3, ConceptStats: []model.ConceptStat{{ConceptName: "A", Passed: false}}},
	}

	verdicts := FoldConceptAttempts(attempts)
	require.Equal(t, model.ConceptPass, verdicts["A"])
}

func TestFoldConceptAttemptsFailWithoutPass(t *testing.T) {
	attempts := []model.AttemptConceptStats{
		{AttemptNumber: 1, ConceptStats: []model.ConceptStat{
			{ConceptName: "A", Passed: false},
			{ConceptName: "B", Passed: true},
		}},
	}

	verdicts := FoldConceptAttempts(attempts)
	require.Equal(t, model.ConceptFail, verdicts["A"])
	require.Equal(t, model.ConceptPass, verdicts["B"])
	_, covered := verdicts["C"] // never attempted, absent
	require.False(t, covered)
}

func TestStageKey(t *testing.T) {
	require.Equal(t, model.StageReading, StageKey(model.Activity{Type: model.ActivityRead}))
	require.Equal(t, model.StageReading, StageKey(model.Activity{Type: model.ActivityGuide}))
	require.Equal(t, "analyze", StageKey(model.Activity{Type: model.ActivityQuiz, QuizStage: "analyze"}))
	require.Equal(t, model.StageRemember, StageKey(model.Activity{Type: model.ActivityQuiz}))
}

func TestProjectLoadingWhenBlobAbsent(t *testing.T) {
	task := Project(quizActivity(), nil, false, 42, "2024-03-10")
	require.Equal(t, model.TaskLoading, task.Status)
	require.Equal(t, int64(42), task.ElapsedSeconds)
}

func TestProjectEmptyBlobIsNotLoading(t *testing.T) {
	task := Project(quizActivity(), &model.AggregatorBlob{SubChapterID: "sub-1"}, true, 0, "2024-03-10")
	require.Equal(t, model.TaskNotStarted, task.Status)
	require.Equal(t, 0, task.Pct)
}

func blobWithConcepts(passed int, attemptDay string) *model.AggregatorBlob {
	stats := []model.ConceptStat{
		{ConceptName: "A", Passed: passed >= 1},
		{ConceptName: "B", Passed: passed >= 2},
		{ConceptName: "C", Passed: passed >= 3},
	}
	return &model.AggregatorBlob{
		SubChapterID: "sub-1",
		QuizStagesData: map[string]model.QuizStageData{
			model.StageRemember: {
				QuizAttempts: []model.Attempt{
					{AttemptNumber: 1, Timestamp: ft(attemptDay + "T10:00:00Z")},
				},
				AllAttemptsConceptStats: []model.AttemptConceptStats{
					{AttemptNumber: 1, ConceptStats: stats},
				},
				Concepts: []model.Concept{
					{ConceptName: "A", SubChapterID: "sub-1"},
					{ConceptName: "B", SubChapterID: "sub-1"},
					{ConceptName: "C", SubChapterID: "sub-1"},
				},
			},
		},
	}
}

func TestProjectQuizOneOfThreeConcepts(t *testing.T) {
	// Attempt today: 1 of 3 concepts mastered -> 33%, partial.
	task := Project(quizActivity(), blobWithConcepts(1, "2024-03-10"), true, 0, "2024-03-10")
	require.Equal(t, 33, task.Pct)
	require.Equal(t, 1, task.Mastered)
	require.Equal(t, 3, task.TotalConcepts)
	require.Equal(t, model.TaskPartial, task.Status)

	// Same attempt on an earlier day -> notstarted.
	task = Project(quizActivity(), blobWithConcepts(1, "2024-03-08"), true, 0, "2024-03-10")
	require.Equal(t, 33, task.Pct)
	require.Equal(t, model.TaskNotStarted, task.Status)
}

func TestProjectQuizCompleted(t *testing.T) {
	task := Project(quizActivity(), blobWithConcepts(3, "2024-03-09"), true, 0, "2024-03-10")
	require.Equal(t, 100, task.Pct)
	require.Equal(t, model.TaskCompleted, task.Status)

	deferred := quizActivity()
	deferred.Deferred = true
	task = Project(deferred, blobWithConcepts(3, "2024-03-09"), true, 0, "2024-03-10")
	require.NotEqual(t, model.TaskCompleted, task.Status)
}

func TestProjectAttemptBuckets(t *testing.T) {
	blob := &model.AggregatorBlob{
		SubChapterID: "sub-1",
		QuizStagesData: map[string]model.QuizStageData{
			model.StageRemember: {
				QuizAttempts: []model.Attempt{
					{AttemptNumber: 1, Timestamp: ft("2024-03-09T10:00:00Z")},
					{AttemptNumber: 2, Timestamp: ft("2024-03-10T10:00:00Z")},
				},
				RevisionAttempts: []model.Attempt{
					{AttemptNumber: 1, Timestamp: ft("2024-03-11T10:00:00Z")},
				},
			},
		},
	}

	task := Project(quizActivity(), blob, true, 0, "2024-03-10")

	require.Len(t, task.Buckets.Before, 1)
	require.Equal(t, "Q1", task.Buckets.Before[0].Label)
	require.Len(t, task.Buckets.Today, 1)
	require.Equal(t, "Q2", task.Buckets.Today[0].Label)
	require.Len(t, task.Buckets.After, 1)
	require.Equal(t, "R1", task.Buckets.After[0].Label)

	// Labels sorted by timestamp across quiz and revision attempts.
	require.Equal(t, []string{"Q1", "Q2", "R1"}, task.AttemptsSoFar)
}

func TestProjectReading(t *testing.T) {
	act := model.Activity{ActivityID: "a-read", Type: model.ActivityRead, SubChapterID: "sub-1"}

	blob := &model.AggregatorBlob{
		SubChapterID:   "sub-1",
		ReadingSummary: &model.ReadingSummary{Percent: 40},
	}
	task := Project(act, blob, true, 120, "2024-03-10")
	require.Equal(t, 40, task.Pct)
	require.Equal(t, model.TaskPartial, task.Status)

	blob.ReadingSummary = &model.ReadingSummary{Completed: true}
	task = Project(act, blob, true, 120, "2024-03-10")
	require.Equal(t, 100, task.Pct)
	require.Equal(t, model.TaskCompleted, task.Status)

	act.Completed = true
	task = Project(act, &model.AggregatorBlob{SubChapterID: "sub-1"}, true, 0, "2024-03-10")
	require.Equal(t, model.TaskCompleted, task.Status)

	act.Completed = false
	task = Project(act, &model.AggregatorBlob{SubChapterID: "sub-1"}, true, 0, "2024-03-10")
	require.Equal(t, model.TaskNotStarted, task.Status)
}
