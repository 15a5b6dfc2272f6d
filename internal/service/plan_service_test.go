package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"planwise/internal/model"
)

type fakeBackend struct {
	mu        sync.Mutex
	planCalls int
	timeCalls int
	blobCalls int
	plan      *model.PlanDocument
	times     map[string]int64
	blobs     map[string]*model.AggregatorBlob
}

func (f *fakeBackend) GetAdaptivePlan(ctx context.Context, planID string) (*model.PlanDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planCalls++
	return f.plan, nil
}

func (f *fakeBackend) GetActivityTime(ctx context.Context, activityID, activityType string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeCalls++
	return f.times[activityID], nil
}

func (f *fakeBackend) GetSubchapterStatus(ctx context.Context, userID, planID, subChapterID string) (*model.AggregatorBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobCalls++
	if blob, ok := f.blobs[subChapterID]; ok {
		return blob, nil
	}
	return &model.AggregatorBlob{SubChapterID: subChapterID}, nil
}

type fakePlanCache struct {
	mu    sync.Mutex
	plans map[string]*model.PlanDocument
}

func (f *fakePlanCache) Set(ctx context.Context, doc *model.PlanDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[doc.ID] = doc
	return nil
}

func (f *fakePlanCache) Get(ctx context.Context, planID string) (*model.PlanDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plans[planID], nil
}

func (f *fakePlanCache) Delete(ctx context.Context, planID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.plans, planID)
	return nil
}

type fakeCursorRepo struct {
	mu      sync.Mutex
	cursors map[string]*model.NavCursor
}

func (f *fakeCursorRepo) Get(ctx context.Context, userID, planID string) (*model.NavCursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursors[userID+"|"+planID], nil
}

func (f *fakeCursorRepo) Upsert(ctx context.Context, cursor *model.NavCursor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[cursor.UserID+"|"+cursor.PlanID] = cursor
	return nil
}

func servicePlan() *model.PlanDocument {
	return &model.PlanDocument{
		ID:        "plan-1",
		BookID:    "book-1",
		Level:     model.LevelMastery,
		CreatedAt: model.FlexTime{Time: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		Sessions: []model.Session{
			{
				SessionLabel: "1",
				Activities: []model.Activity{
					{ActivityID: "a-read", Type: "read", SubChapterID: "sub-1", SubChapterName: "Friction", ChapterName: "Forces", BookName: "Physics", Subject: "Mechanics", Grouping: "Dynamics"},
					{ActivityID: "a-quiz", Type: "quiz", QuizStage: "remember", SubChapterID: "sub-1", SubChapterName: "Friction", ChapterName: "Forces", BookName: "Physics", Subject: "Mechanics", Grouping: "Dynamics"},
				},
			},
		},
	}
}

func newTestService(backend *fakeBackend) (*PlanService, *fakeCursorRepo) {
	cursorRepo := &fakeCursorRepo{cursors: map[string]*model.NavCursor{}}
	svc := NewPlanService(backend, &fakePlanCache{plans: map[string]*model.PlanDocument{}}, cursorRepo, 4)
	return svc, cursorRepo
}

func TestLoadPlanRequiresIdentifiers(t *testing.T) {
	svc, _ := newTestService(&fakeBackend{plan: servicePlan()})

	_, err := svc.LoadPlan(context.Background(), "", "plan-1", false)
	require.Error(t, err)

	_, err = svc.LoadPlan(context.Background(), "user-1", "", false)
	require.Error(t, err)
}

func TestLoadPlanFlattensAndCatalogs(t *testing.T) {
	backend := &fakeBackend{plan: servicePlan()}
	svc, _ := newTestService(backend)

	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)
	require.Len(t, session.Activities, 2)
	require.Equal(t, 0, session.Activities[0].FlatIndex)
	require.Equal(t, 1, session.Activities[1].FlatIndex)
	require.Len(t, session.Catalog.SubChapters, 1)
	require.Equal(t, 0, session.Cursor())
}

func TestLoadPlanUsesCacheOnReload(t *testing.T) {
	backend := &fakeBackend{plan: servicePlan()}
	svc, _ := newTestService(backend)

	_, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, backend.planCalls)

	// Second user, same plan: served from the plan cache.
	_, err = svc.LoadPlan(context.Background(), "user-2", "plan-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, backend.planCalls)

	// Force bypasses both session registry and plan cache.
	_, err = svc.LoadPlan(context.Background(), "user-1", "plan-1", true)
	require.NoError(t, err)
	require.Equal(t, 2, backend.planCalls)
}

func TestLoadPlanEmptyPlanIsNotError(t *testing.T) {
	backend := &fakeBackend{plan: &model.PlanDocument{ID: "plan-empty"}}
	svc, _ := newTestService(backend)

	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-empty", false)
	require.NoError(t, err)
	require.Empty(t, session.Activities)
	require.Equal(t, -1, session.Cursor())
	require.Nil(t, session.CurrentActivity())
}

func TestDayTasksScenario(t *testing.T) {
	// A day with one read and one quiz over 3 concepts, 1 passed today.
	backend := &fakeBackend{
		plan:  servicePlan(),
		times: map[string]int64{"a-read": 300},
		blobs: map[string]*model.AggregatorBlob{
			"sub-1": {
				SubChapterID:   "sub-1",
				ReadingSummary: &model.ReadingSummary{Percent: 50},
				QuizStagesData: map[string]model.QuizStageData{
					"remember": {
						QuizAttempts: []model.Attempt{
							{AttemptNumber: 1, Timestamp: model.FlexTime{Time: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}},
						},
						AllAttemptsConceptStats: []model.AttemptConceptStats{
							{AttemptNumber: 1, ConceptStats: []model.ConceptStat{
								{ConceptName: "A", Passed: true},
								{ConceptName: "B", Passed: false},
								{ConceptName: "C", Passed: false},
							}},
						},
						Concepts: []model.Concept{
							{ConceptName: "A", SubChapterID: "sub-1"},
							{ConceptName: "B", SubChapterID: "sub-1"},
							{ConceptName: "C", SubChapterID: "sub-1"},
						},
					},
				},
				Concepts: []model.Concept{
					{ConceptName: "A", SubChapterID: "sub-1"},
					{ConceptName: "B", SubChapterID: "sub-1"},
					{ConceptName: "C", SubChapterID: "sub-1"},
				},
			},
		},
	}
	svc, _ := newTestService(backend)

	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)

	tasks, err := svc.DayTasks(context.Background(), "user-1", "plan-1", 0)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	readTask, quizTask := tasks[0], tasks[1]
	require.Equal(t, "a-read", readTask.Activity.ActivityID)
	require.Equal(t, int64(300), readTask.ElapsedSeconds)
	require.Equal(t, model.TaskPartial, readTask.Status)

	require.Equal(t, 33, quizTask.Pct)
	require.Equal(t, 1, quizTask.Mastered)
	require.Equal(t, 3, quizTask.TotalConcepts)
	// Attempt on 2024-03-10 is "today" for day 0 of a plan created 2024-03-10.
	require.Equal(t, model.TaskPartial, quizTask.Status)

	// Concepts returned by the batch landed in the catalog, deduplicated.
	require.Len(t, session.Catalog.Concepts, 3)

	// A second call serves from the store: no extra upstream calls.
	before := backend.timeCalls + backend.blobCalls
	_, err = svc.DayTasks(context.Background(), "user-1", "plan-1", 0)
	require.NoError(t, err)
	require.Equal(t, before, backend.timeCalls+backend.blobCalls)
}

func TestDayTasksBucketsFollowSessionLabel(t *testing.T) {
	// First session labeled "3": its date is creation + 2 days, so an
	// attempt on 2024-03-12 is "today" and one on 2024-03-10 is "before".
	doc := servicePlan()
	doc.Sessions[0].SessionLabel = "3"
	backend := &fakeBackend{
		plan: doc,
		blobs: map[string]*model.AggregatorBlob{
			"sub-1": {
				SubChapterID: "sub-1",
				QuizStagesData: map[string]model.QuizStageData{
					"remember": {
						QuizAttempts: []model.Attempt{
							{AttemptNumber: 1, Timestamp: model.FlexTime{Time: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}},
							{AttemptNumber: 2, Timestamp: model.FlexTime{Time: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)}},
						},
					},
				},
			},
		},
	}
	svc, _ := newTestService(backend)

	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)
	require.Equal(t, "2024-03-12", session.SessionDate(0))

	tasks, err := svc.DayTasks(context.Background(), "user-1", "plan-1", 0)
	require.NoError(t, err)

	quizTask := tasks[1]
	require.Len(t, quizTask.Buckets.Before, 1)
	require.Equal(t, "Q1", quizTask.Buckets.Before[0].Label)
	require.Len(t, quizTask.Buckets.Today, 1)
	require.Equal(t, "Q2", quizTask.Buckets.Today[0].Label)
	require.Empty(t, quizTask.Buckets.After)
}

func TestDayTasksOutOfRange(t *testing.T) {
	svc, _ := newTestService(&fakeBackend{plan: servicePlan()})
	_, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)

	_, err = svc.DayTasks(context.Background(), "user-1", "plan-1", 5)
	require.Error(t, err)
}

func TestCursorUnclamped(t *testing.T) {
	svc, repo := newTestService(&fakeBackend{plan: servicePlan()})
	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)

	// Out-of-range index stored as given.
	require.NoError(t, svc.SetCursor(context.Background(), "user-1", "plan-1", 99))
	require.Equal(t, 99, session.Cursor())
	require.Nil(t, session.CurrentActivity())

	// Advance past the end does not clamp either.
	index, err := svc.AdvanceCursor(context.Background(), "user-1", "plan-1")
	require.NoError(t, err)
	require.Equal(t, 100, index)

	// Persisted for the next load.
	saved, err := repo.Get(context.Background(), "user-1", "plan-1")
	require.NoError(t, err)
	require.Equal(t, 100, saved.CurrentIndex)
}

func TestCursorRestoredOnLoad(t *testing.T) {
	backend := &fakeBackend{plan: servicePlan()}
	svc, repo := newTestService(backend)
	require.NoError(t, repo.Upsert(context.Background(), &model.NavCursor{UserID: "user-1", PlanID: "plan-1", CurrentIndex: 1}))

	session, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, session.Cursor())
	require.Equal(t, "a-quiz", session.CurrentActivity().ActivityID)
}

func TestSubchapterStatusForceRefetches(t *testing.T) {
	backend := &fakeBackend{
		plan: servicePlan(),
		blobs: map[string]*model.AggregatorBlob{
			"sub-1": {
				SubChapterID: "sub-1",
				Concepts:     []model.Concept{{ConceptName: "A", SubChapterID: "sub-1"}},
			},
		},
	}
	svc, _ := newTestService(backend)
	_, err := svc.LoadPlan(context.Background(), "user-1", "plan-1", false)
	require.NoError(t, err)

	_, err = svc.SubchapterStatus(context.Background(), "user-1", "plan-1", "sub-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, backend.blobCalls)

	_, err = svc.SubchapterStatus(context.Background(), "user-1", "plan-1", "sub-1", false)
	require.NoError(t, err)
	require.Equal(t, 1, backend.blobCalls, "cached blob with concepts short-circuits")

	_, err = svc.SubchapterStatus(context.Background(), "user-1", "plan-1", "sub-1", true)
	require.NoError(t, err)
	require.Equal(t, 2, backend.blobCalls)
}
