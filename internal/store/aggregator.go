package store

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"planwise/internal/model"
)

// Fetcher is the slice of the upstream API the store needs.
type Fetcher interface {
	GetActivityTime(ctx context.Context, activityID, activityType string) (int64, error)
	GetSubchapterStatus(ctx context.Context, userID, planID, subChapterID string) (*model.AggregatorBlob, error)
}

// DefaultMaxConcurrent bounds the upstream fan-out per batch.
const DefaultMaxConcurrent = 8

// Store is the lazy aggregator cache for one (user, plan) pair: elapsed
// time per activity, one status blob per subchapter, which days have been
// loaded, and the last error per subchapter.
//
// Each fetch batch commits under a single lock acquisition, so readers
// always see either the previous snapshot or the fully merged one, never a
// torn state. Duplicate in-flight fetches for the same id are tolerated:
// merges are idempotent and last-write-wins on overlapping fields.
type Store struct {
	fetcher       Fetcher
	userID        string
	planID        string
	maxConcurrent int

	mu              sync.RWMutex
	timeMap         map[string]int64
	subchapterMap   map[string]*model.AggregatorBlob
	loadedDays      map[int]bool
	subchapterErrs  map[string]string
	activityTimeErr map[string]string
}

// New creates an empty store. maxConcurrent <= 0 selects the default limit.
func New(fetcher Fetcher, userID, planID string, maxConcurrent int) *Store {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Store{
		fetcher:         fetcher,
		userID:          userID,
		planID:          planID,
		maxConcurrent:   maxConcurrent,
		timeMap:         map[string]int64{},
		subchapterMap:   map[string]*model.AggregatorBlob{},
		loadedDays:      map[int]bool{},
		subchapterErrs:  map[string]string{},
		activityTimeErr: map[string]string{},
	}
}

type timeResult struct {
	activityID string
	seconds    int64
	err        error
}

type blobResult struct {
	subChapterID string
	blob         *model.AggregatorBlob
	err          error
}

// FetchDay loads elapsed time for every activity of the day and the status
// blob for every distinct subchapter the day touches. A day already loaded
// is a no-op with zero network calls. A failed per-id fetch defaults that
// id to zero/empty and records the error; it never aborts the batch.
func (s *Store) FetchDay(ctx context.Context, dayIndex int, activities []model.Activity) error {
	s.mu.RLock()
	loaded := s.loadedDays[dayIndex]
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	subIDs := []string{}
	seenSub := map[string]bool{}
	for _, act := range activities {
		if act.SubChapterID != "" && !seenSub[act.SubChapterID] {
			seenSub[act.SubChapterID] = true
			subIDs = append(subIDs, act.SubChapterID)
		}
	}

	times := make([]timeResult, len(activities))
	blobs := make([]blobResult, len(subIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, act := range activities {
		i, act := i, act
		g.Go(func() error {
			seconds, err := s.fetcher.GetActivityTime(gctx, act.ActivityID, act.Type)
			times[i] = timeResult{activityID: act.ActivityID, seconds: seconds, err: err}
			return nil
		})
	}
	for i, subID := range subIDs {
		i, subID := i, subID
		g.Go(func() error {
			blob, err := s.fetcher.GetSubchapterStatus(gctx, s.userID, s.planID, subID)
			blobs[i] = blobResult{subChapterID: subID, blob: blob, err: err}
			return nil
		})
	}

	// Workers never return errors; failures live in the result slots.
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tr := range times {
		if tr.activityID == "" {
			continue
		}
		if tr.err != nil {
			log.Printf("[Aggregator] activity time fetch failed for %s: %v", tr.activityID, tr.err)
			if _, have := s.timeMap[tr.activityID]; !have {
				s.timeMap[tr.activityID] = 0
			}
			s.activityTimeErr[tr.activityID] = tr.err.Error()
			continue
		}
		s.timeMap[tr.activityID] = tr.seconds
		delete(s.activityTimeErr, tr.activityID)
	}

	for _, br := range blobs {
		if br.err != nil {
			log.Printf("[Aggregator] subchapter status fetch failed for %s: %v", br.subChapterID, br.err)
			if _, have := s.subchapterMap[br.subChapterID]; !have {
				s.subchapterMap[br.subChapterID] = &model.AggregatorBlob{SubChapterID: br.subChapterID}
			}
			s.subchapterErrs[br.subChapterID] = br.err.Error()
			continue
		}
		s.subchapterMap[br.subChapterID] = mergeBlob(s.subchapterMap[br.subChapterID], br.blob)
		delete(s.subchapterErrs, br.subChapterID)
	}

	s.loadedDays[dayIndex] = true
	return nil
}

// FetchSubchapter returns the status blob for one subchapter. A cached blob
// that already carries concepts short-circuits unless force is set; the
// returned blob always carries its concepts so callers can forward them to
// the catalog merge either way. A failed fetch keeps (or creates) the
// cached blob, records the error, and is not fatal.
func (s *Store) FetchSubchapter(ctx context.Context, subChapterID string, force bool) *model.AggregatorBlob {
	s.mu.RLock()
	cached := s.subchapterMap[subChapterID]
	s.mu.RUnlock()

	if cached != nil && len(cached.Concepts) > 0 && !force {
		return cached
	}

	blob, err := s.fetcher.GetSubchapterStatus(ctx, s.userID, s.planID, subChapterID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("[Aggregator] subchapter status fetch failed for %s: %v", subChapterID, err)
		if s.subchapterMap[subChapterID] == nil {
			s.subchapterMap[subChapterID] = &model.AggregatorBlob{SubChapterID: subChapterID}
		}
		s.subchapterErrs[subChapterID] = err.Error()
		return s.subchapterMap[subChapterID]
	}

	merged := mergeBlob(s.subchapterMap[subChapterID], blob)
	s.subchapterMap[subChapterID] = merged
	delete(s.subchapterErrs, subChapterID)
	return merged
}

// RefreshSubchapter always re-fetches, bypassing the cached-concepts check.
func (s *Store) RefreshSubchapter(ctx context.Context, subChapterID string) *model.AggregatorBlob {
	return s.FetchSubchapter(ctx, subChapterID, true)
}

// TimeFor returns the committed elapsed seconds for an activity.
func (s *Store) TimeFor(activityID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seconds, ok := s.timeMap[activityID]
	return seconds, ok
}

// BlobFor returns the committed blob for a subchapter. The second return
// distinguishes "blob arrived" from "never fetched", which the projector
// maps to the loading state.
func (s *Store) BlobFor(subChapterID string) (*model.AggregatorBlob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.subchapterMap[subChapterID]
	return blob, ok
}

// ErrorFor returns the last recorded fetch error for a subchapter.
func (s *Store) ErrorFor(subChapterID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.subchapterErrs[subChapterID]
	return msg, ok
}

// DayLoaded reports whether FetchDay has committed the given day.
func (s *Store) DayLoaded(dayIndex int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedDays[dayIndex]
}
