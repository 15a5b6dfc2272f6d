package store

import "planwise/internal/model"

// mergeBlob shallow-merges a freshly fetched blob over the cached one: new
// fields overwrite, but fields absent in the new response never erase
// previously cached data. Stage entries merge per stage key. The result is
// a new blob; committed blobs are never mutated in place.
func mergeBlob(old, fresh *model.AggregatorBlob) *model.AggregatorBlob {
	if old == nil {
		return fresh
	}
	if fresh == nil {
		return old
	}

	out := &model.AggregatorBlob{
		SubChapterID:   old.SubChapterID,
		QuizStagesData: old.QuizStagesData,
		TaskInfo:       old.TaskInfo,
		ReadingSummary: old.ReadingSummary,
		Concepts:       old.Concepts,
	}

	if fresh.SubChapterID != "" {
		out.SubChapterID = fresh.SubChapterID
	}
	if fresh.QuizStagesData != nil {
		merged := map[string]model.QuizStageData{}
		for stage, data := range old.QuizStagesData {
			merged[stage] = data
		}
		for stage, data := range fresh.QuizStagesData {
			merged[stage] = data
		}
		out.QuizStagesData = merged
	}
	if fresh.TaskInfo != nil {
		out.TaskInfo = fresh.TaskInfo
	}
	if fresh.ReadingSummary != nil {
		out.ReadingSummary = fresh.ReadingSummary
	}
	if len(fresh.Concepts) > 0 {
		out.Concepts = fresh.Concepts
	}
	return out
}
