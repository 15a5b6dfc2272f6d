package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"planwise/internal/cache"
	"planwise/internal/model"
	"planwise/internal/plan"
	"planwise/internal/repository"
	"planwise/internal/store"
	"planwise/internal/task"
)

// Backend is the upstream learning-backend surface the service consumes.
type Backend interface {
	GetAdaptivePlan(ctx context.Context, planID string) (*model.PlanDocument, error)
	GetActivityTime(ctx context.Context, activityID, activityType string) (int64, error)
	GetSubchapterStatus(ctx context.Context, userID, planID, subChapterID string) (*model.AggregatorBlob, error)
}

// PlanService owns the plan sessions: it loads plan documents (redis cache
// first, upstream on miss), flattens and catalogs them, drives the lazy
// aggregator store, projects task models, and manages navigation cursors.
type PlanService struct {
	backend       Backend
	planCache     cache.PlanCache
	cursorRepo    repository.CursorRepo
	maxConcurrent int

	mu       sync.RWMutex
	sessions map[string]*PlanSession
}

// NewPlanService creates a plan service. maxConcurrent bounds the upstream
// fan-out per aggregator batch; <= 0 selects the store default.
func NewPlanService(backend Backend, planCache cache.PlanCache, cursorRepo repository.CursorRepo, maxConcurrent int) *PlanService {
	return &PlanService{
		backend:       backend,
		planCache:     planCache,
		cursorRepo:    cursorRepo,
		maxConcurrent: maxConcurrent,
		sessions:      map[string]*PlanSession{},
	}
}

// LoadPlan fetches, flattens, and catalogs a plan, creating (or wholesale
// replacing, when force is set) the session for this user and plan. A plan
// without sessions is an empty plan, not an error. Missing identifiers
// short-circuit before any fetch.
func (s *PlanService) LoadPlan(ctx context.Context, userID, planID string, force bool) (*PlanSession, error) {
	if userID == "" || planID == "" {
		return nil, fmt.Errorf("missing userId or planId")
	}

	key := sessionKey(userID, planID)

	if !force {
		s.mu.RLock()
		existing := s.sessions[key]
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
	}

	doc, err := s.loadDocument(ctx, planID, force)
	if err != nil {
		return nil, err
	}

	doc, activities := plan.Flatten(doc)
	catalog := plan.BuildCatalog(doc, nil)

	cursor := 0
	if len(activities) == 0 {
		cursor = -1
	}
	if saved, err := s.cursorRepo.Get(ctx, userID, planID); err != nil {
		log.Printf("[PlanService] cursor restore failed for %s/%s: %v", userID, planID, err)
	} else if saved != nil && len(activities) > 0 {
		cursor = saved.CurrentIndex
	}

	session := newPlanSession(userID, planID, doc, activities, catalog,
		store.New(s.backend, userID, planID, s.maxConcurrent), cursor)

	s.mu.Lock()
	s.sessions[key] = session
	s.mu.Unlock()

	return session, nil
}

// loadDocument checks the plan cache before going upstream.
func (s *PlanService) loadDocument(ctx context.Context, planID string, force bool) (*model.PlanDocument, error) {
	if !force {
		cached, err := s.planCache.Get(ctx, planID)
		if err != nil {
			log.Printf("[PlanService] plan cache read failed for %s: %v", planID, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	doc, err := s.backend.GetAdaptivePlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plan %s: %w", planID, err)
	}

	if err := s.planCache.Set(ctx, doc); err != nil {
		log.Printf("[PlanService] plan cache write failed for %s: %v", planID, err)
	}
	return doc, nil
}

// Session returns the loaded session for a user/plan pair.
func (s *PlanService) Session(userID, planID string) (*PlanSession, error) {
	s.mu.RLock()
	session := s.sessions[sessionKey(userID, planID)]
	s.mu.RUnlock()
	if session == nil {
		return nil, fmt.Errorf("plan %s not loaded for user %s", planID, userID)
	}
	return session, nil
}

// DayTasks ensures the day's aggregates are loaded and projects every
// activity of the day into its task model. Concepts returned by the batch
// are merged into the catalog.
func (s *PlanService) DayTasks(ctx context.Context, userID, planID string, dayIndex int) ([]model.Task, error) {
	session, err := s.Session(userID, planID)
	if err != nil {
		return nil, err
	}
	if dayIndex < 0 || dayIndex >= session.DayCount() {
		return nil, fmt.Errorf("day %d out of range", dayIndex)
	}

	dayActivities := plan.ForDay(session.Activities, dayIndex)
	if err := session.Store.FetchDay(ctx, dayIndex, dayActivities); err != nil {
		return nil, err
	}

	sessionDate := session.SessionDate(dayIndex)
	tasks := make([]model.Task, 0, len(dayActivities))
	for _, act := range dayActivities {
		blob, loaded := session.Store.BlobFor(act.SubChapterID)
		if loaded {
			session.Catalog.AddConcepts(act.SubChapterID, blob.Concepts)
		}
		elapsed, _ := session.Store.TimeFor(act.ActivityID)
		tasks = append(tasks, task.Project(act, blob, loaded, elapsed, sessionDate))
	}
	return tasks, nil
}

// SubchapterStatus returns the aggregator blob for one subchapter, fetching
// lazily; force bypasses the cached-concepts short-circuit. The blob's
// concepts are always forwarded to the catalog merge.
func (s *PlanService) SubchapterStatus(ctx context.Context, userID, planID, subChapterID string, force bool) (*model.AggregatorBlob, error) {
	if subChapterID == "" {
		return nil, fmt.Errorf("missing subChapterId")
	}
	session, err := s.Session(userID, planID)
	if err != nil {
		return nil, err
	}

	blob := session.Store.FetchSubchapter(ctx, subChapterID, force)
	session.Catalog.AddConcepts(subChapterID, blob.Concepts)
	return blob, nil
}

// Cursor returns the current navigation index for a loaded plan.
func (s *PlanService) Cursor(userID, planID string) (int, error) {
	session, err := s.Session(userID, planID)
	if err != nil {
		return 0, err
	}
	return session.Cursor(), nil
}

// SetCursor stores the index as given (no clamping) and persists it.
func (s *PlanService) SetCursor(ctx context.Context, userID, planID string, index int) error {
	session, err := s.Session(userID, planID)
	if err != nil {
		return err
	}
	session.SetCursor(index)
	s.persistCursor(ctx, userID, planID, index)
	return nil
}

// AdvanceCursor increments unconditionally and persists the new index.
func (s *PlanService) AdvanceCursor(ctx context.Context, userID, planID string) (int, error) {
	session, err := s.Session(userID, planID)
	if err != nil {
		return 0, err
	}
	index := session.AdvanceCursor()
	s.persistCursor(ctx, userID, planID, index)
	return index, nil
}

func (s *PlanService) persistCursor(ctx context.Context, userID, planID string, index int) {
	err := s.cursorRepo.Upsert(ctx, &model.NavCursor{
		UserID:       userID,
		PlanID:       planID,
		CurrentIndex: index,
	})
	if err != nil {
		log.Printf("[PlanService] cursor persist failed for %s/%s: %v", userID, planID, err)
	}
}
