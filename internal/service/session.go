package service

import (
	"sync"

	"planwise/internal/model"
	"planwise/internal/plan"
	"planwise/internal/store"
)

// PlanSession is everything derived from one fetch of a plan for one user:
// the annotated document, the flattened activity sequence, the catalog, the
// lazy aggregator store, and the navigation cursor. A re-fetch replaces the
// whole session; flat indices are not stable across fetches.
type PlanSession struct {
	UserID string
	PlanID string

	Doc        *model.PlanDocument
	Activities []model.Activity
	Catalog    *plan.Catalog
	Store      *store.Store

	mu     sync.Mutex
	cursor int
}

func newPlanSession(userID, planID string, doc *model.PlanDocument, activities []model.Activity, catalog *plan.Catalog, st *store.Store, cursor int) *PlanSession {
	return &PlanSession{
		UserID:     userID,
		PlanID:     planID,
		Doc:        doc,
		Activities: activities,
		Catalog:    catalog,
		Store:      st,
		cursor:     cursor,
	}
}

// Cursor returns the current navigation index.
func (s *PlanSession) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor stores the index exactly as given. No clamping: consumers must
// treat an out-of-range index as "nothing selected".
func (s *PlanSession) SetCursor(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = index
}

// AdvanceCursor increments unconditionally and returns the new index, which
// may point past the end of the activity list.
func (s *PlanSession) AdvanceCursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor++
	return s.cursor
}

// CurrentActivity resolves the cursor to an activity, nil when the index is
// out of range.
func (s *PlanSession) CurrentActivity() *model.Activity {
	s.mu.Lock()
	index := s.cursor
	s.mu.Unlock()

	if index < 0 || index >= len(s.Activities) {
		return nil
	}
	act := s.Activities[index]
	return &act
}

// DayCount returns how many sessions (days) the plan has.
func (s *PlanSession) DayCount() int {
	if s.Doc == nil {
		return 0
	}
	return len(s.Doc.Sessions)
}

// SessionDate returns the ISO day a given dayIndex falls on, derived from
// the session's own label rather than its position.
func (s *PlanSession) SessionDate(dayIndex int) string {
	if s.Doc == nil || dayIndex < 0 || dayIndex >= len(s.Doc.Sessions) {
		return ""
	}
	return model.SessionDate(s.Doc.CreatedAt, s.Doc.Sessions[dayIndex].SessionLabel, dayIndex)
}

func sessionKey(userID, planID string) string {
	return userID + "|" + planID
}
