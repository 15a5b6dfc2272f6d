package plan

import (
	"sort"
	"strings"
	"sync"

	"planwise/internal/model"
)

// Hierarchy is the 4-level book -> subject -> grouping -> chapter map down
// to the ordered, deduplicated subchapter ids under each chapter.
type Hierarchy map[string]map[string]map[string]map[string][]string

// Catalog is the derived browse/filter view of one flattened plan: the
// location hierarchy, a deduplicated subchapter list, and a concept list
// that grows incrementally as aggregator fetches return concepts.
type Catalog struct {
	Hierarchy   Hierarchy             `json:"hierarchy"`
	SubChapters []model.SubChapterRow `json:"subChapters"`
	Concepts    []model.Concept       `json:"concepts"`

	mu          sync.Mutex
	rowByID     map[string]model.SubChapterRow
	conceptSeen map[string]bool
}

// BuildCatalog derives the catalog from a flattened plan document. The
// optional extraConcepts map seeds concepts already known for a subchapter.
// Output is deterministic: dedup preserves first-occurrence order and every
// list is sorted, so identical input yields identical output.
func BuildCatalog(doc *model.PlanDocument, extraConcepts map[string][]model.Concept) *Catalog {
	c := &Catalog{
		Hierarchy:   Hierarchy{},
		SubChapters: []model.SubChapterRow{},
		Concepts:    []model.Concept{},
		rowByID:     map[string]model.SubChapterRow{},
		conceptSeen: map[string]bool{},
	}
	if doc == nil {
		return c
	}

	for _, sess := range doc.Sessions {
		for _, act := range sess.Activities {
			if act.SubChapterID == "" {
				continue
			}
			row := model.SubChapterRow{
				SubChapterID: act.SubChapterID,
				Book:         act.BookName,
				Subject:      act.Subject,
				Grouping:     act.Grouping,
				Chapter:      act.ChapterName,
				SubChapter:   act.SubChapterName,
			}
			c.addToHierarchy(row)
			if _, seen := c.rowByID[row.SubChapterID]; !seen {
				c.rowByID[row.SubChapterID] = row
				c.SubChapters = append(c.SubChapters, row)
			}
		}
	}

	sort.Slice(c.SubChapters, func(i, j int) bool {
		return rowSortKey(c.SubChapters[i]) < rowSortKey(c.SubChapters[j])
	})

	for subID, concepts := range extraConcepts {
		for _, concept := range concepts {
			if concept.SubChapterID == "" {
				concept.SubChapterID = subID
			}
			c.appendConcept(concept)
		}
	}
	c.sortConcepts()

	return c
}

// AddConcepts merges concepts returned lazily by an aggregator fetch. A
// (conceptName, subChapterId) pair is kept at most once no matter how many
// fetches return it. Safe for concurrent callers.
func (c *Catalog) AddConcepts(subChapterID string, concepts []model.Concept) {
	if len(concepts) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	added := false
	for _, concept := range concepts {
		if concept.SubChapterID == "" {
			concept.SubChapterID = subChapterID
		}
		if c.appendConcept(concept) {
			added = true
		}
	}
	if added {
		c.sortConcepts()
	}
}

// View is a point-in-time copy of the catalog safe to serialize while
// concept merges continue on the live catalog.
type View struct {
	Hierarchy   Hierarchy             `json:"hierarchy"`
	SubChapters []model.SubChapterRow `json:"subChapters"`
	Concepts    []model.Concept       `json:"concepts"`
}

// Snapshot copies the concept list under the lock. Hierarchy and SubChapters
// are immutable after BuildCatalog, so sharing them is fine.
func (c *Catalog) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	concepts := make([]model.Concept, len(c.Concepts))
	copy(concepts, c.Concepts)
	return View{
		Hierarchy:   c.Hierarchy,
		SubChapters: c.SubChapters,
		Concepts:    concepts,
	}
}

// ConceptsFor returns the known concepts of one subchapter.
func (c *Catalog) ConceptsFor(subChapterID string) []model.Concept {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []model.Concept{}
	for _, concept := range c.Concepts {
		if concept.SubChapterID == subChapterID {
			out = append(out, concept)
		}
	}
	return out
}

// RowFor returns the catalog row for a subchapter id, if present.
func (c *Catalog) RowFor(subChapterID string) (model.SubChapterRow, bool) {
	row, ok := c.rowByID[subChapterID]
	return row, ok
}

func (c *Catalog) addToHierarchy(row model.SubChapterRow) {
	subjects, ok := c.Hierarchy[row.Book]
	if !ok {
		subjects = map[string]map[string]map[string][]string{}
		c.Hierarchy[row.Book] = subjects
	}
	groupings, ok := subjects[row.Subject]
	if !ok {
		groupings = map[string]map[string][]string{}
		subjects[row.Subject] = groupings
	}
	chapters, ok := groupings[row.Grouping]
	if !ok {
		chapters = map[string][]string{}
		groupings[row.Grouping] = chapters
	}
	for _, id := range chapters[row.Chapter] {
		if id == row.SubChapterID {
			return
		}
	}
	chapters[row.Chapter] = append(chapters[row.Chapter], row.SubChapterID)
}

// appendConcept adds one concept if unseen, filling location labels from the
// catalog row when the concept carries none. Caller holds the lock (or is
// still single-threaded inside BuildCatalog).
func (c *Catalog) appendConcept(concept model.Concept) bool {
	key := concept.ConceptName + "|" + concept.SubChapterID
	if c.conceptSeen[key] {
		return false
	}
	c.conceptSeen[key] = true

	if row, ok := c.rowByID[concept.SubChapterID]; ok {
		if concept.Book == "" {
			concept.Book = row.Book
		}
		if concept.Subject == "" {
			concept.Subject = row.Subject
		}
		if concept.Grouping == "" {
			concept.Grouping = row.Grouping
		}
		if concept.Chapter == "" {
			concept.Chapter = row.Chapter
		}
		if concept.SubChapter == "" {
			concept.SubChapter = row.SubChapter
		}
	}

	c.Concepts = append(c.Concepts, concept)
	return true
}

func (c *Catalog) sortConcepts() {
	sort.Slice(c.Concepts, func(i, j int) bool {
		if c.Concepts[i].ConceptName != c.Concepts[j].ConceptName {
			return c.Concepts[i].ConceptName < c.Concepts[j].ConceptName
		}
		return c.Concepts[i].SubChapterID < c.Concepts[j].SubChapterID
	})
}

func rowSortKey(row model.SubChapterRow) string {
	return strings.Join([]string{row.Book, row.Subject, row.Grouping, row.Chapter, row.SubChapter}, "|")
}
