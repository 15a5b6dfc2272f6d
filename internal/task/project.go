package task

import (
	"fmt"
	"math"
	"sort"

	"planwise/internal/model"
)

// StageKey maps an activity to the aggregator stage it reads from: reading
// for read/guide activities, the quiz stage otherwise ("remember" when the
// stage field is empty).
func StageKey(act model.Activity) string {
	if act.Type == model.ActivityQuiz {
		if act.QuizStage == "" {
			return model.StageRemember
		}
		return act.QuizStage
	}
	return model.StageReading
}

// Project combines one activity, its subchapter's aggregator blob, and its
// elapsed time into a render-ready task. Pure: no fetching, no mutation of
// inputs. blobLoaded distinguishes "blob arrived but empty" from "not
// fetched yet"; the latter projects as loading. sessionDate is the ISO day
// (YYYY-MM-DD) the activity's session falls on, used to bucket attempts.
func Project(act model.Activity, blob *model.AggregatorBlob, blobLoaded bool, elapsedSeconds int64, sessionDate string) model.Task {
	t := model.Task{
		Activity:       act,
		StageKey:       StageKey(act),
		ElapsedSeconds: elapsedSeconds,
		AttemptsSoFar:  []string{},
		Buckets: model.AttemptBuckets{
			Before: []model.AttemptRef{},
			Today:  []model.AttemptRef{},
			After:  []model.AttemptRef{},
		},
	}

	if !blobLoaded {
		t.Status = model.TaskLoading
		return t
	}

	if t.StageKey == model.StageReading {
		projectReading(&t, blob)
		return t
	}

	stageData := blob.StageData(t.StageKey)

	verdicts := FoldConceptAttempts(stageData.AllAttemptsConceptStats)
	t.Mastered = countMastered(verdicts)
	t.TotalConcepts = len(stageData.Concepts)
	t.Pct = percent(t.Mastered, t.TotalConcepts)

	refs := attemptRefs(stageData)
	for _, ref := range refs {
		t.AttemptsSoFar = append(t.AttemptsSoFar, ref.Label)
	}
	t.Buckets = bucketAttempts(refs, sessionDate)

	switch {
	case t.Pct == 100 && !act.Deferred:
		t.Status = model.TaskCompleted
	case len(t.Buckets.Today) > 0:
		t.Status = model.TaskPartial
	default:
		t.Status = model.TaskNotStarted
	}
	return t
}

func projectReading(t *model.Task, blob *model.AggregatorBlob) {
	summary := blob.ReadingSummary
	switch {
	case t.Activity.Completed || (summary != nil && summary.Completed):
		t.Pct = 100
	case summary != nil:
		t.Pct = clampPct(int(math.Round(summary.Percent)))
	}

	switch {
	case t.Pct == 100 && !t.Activity.Deferred:
		t.Status = model.TaskCompleted
	case t.Pct > 0:
		t.Status = model.TaskPartial
	default:
		t.Status = model.TaskNotStarted
	}
}

// attemptRefs merges quiz and revision attempts into one timeline, labeled
// "Q<n>" / "R<n>" and sorted by timestamp.
func attemptRefs(stageData model.QuizStageData) []model.AttemptRef {
	refs := make([]model.AttemptRef, 0, len(stageData.QuizAttempts)+len(stageData.RevisionAttempts))
	for _, a := range stageData.QuizAttempts {
		refs = append(refs, model.AttemptRef{
			Label:     fmt.Sprintf("Q%d", a.AttemptNumber),
			Date:      a.Timestamp.DayString(),
			Timestamp: a.Timestamp.Time,
		})
	}
	for _, a := range stageData.RevisionAttempts {
		refs = append(refs, model.AttemptRef{
			Label:     fmt.Sprintf("R%d", a.AttemptNumber),
			Date:      a.Timestamp.DayString(),
			Timestamp: a.Timestamp.Time,
		})
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Timestamp.Before(refs[j].Timestamp)
	})
	return refs
}

// bucketAttempts partitions attempts around the session date by comparing
// day-truncated ISO strings: exact equality is today, lexicographic order
// decides before/after (valid because both sides are YYYY-MM-DD).
func bucketAttempts(refs []model.AttemptRef, sessionDate string) model.AttemptBuckets {
	buckets := model.AttemptBuckets{
		Before: []model.AttemptRef{},
		Today:  []model.AttemptRef{},
		After:  []model.AttemptRef{},
	}
	for _, ref := range refs {
		switch {
		case ref.Date == "" || sessionDate == "":
			buckets.Before = append(buckets.Before, ref)
		case ref.Date == sessionDate:
			buckets.Today = append(buckets.Today, ref)
		case ref.Date < sessionDate:
			buckets.Before = append(buckets.Before, ref)
		default:
			buckets.After = append(buckets.After, ref)
		}
	}
	return buckets
}

func percent(mastered, total int) int {
	if total == 0 {
		return 0
	}
	return clampPct(int(math.Round(float64(mastered) / float64(total) * 100)))
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
