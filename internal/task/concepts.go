package task

import "planwise/internal/model"

// FoldConceptAttempts folds every historical attempt's concept stats into a
// single concept -> PASS/FAIL map. PASS is sticky: once any attempt marks a
// concept passed, a later failure does not downgrade it. A concept no
// attempt ever covered is absent from the map.
//
// This is the one shared reducer every consumer of concept mastery uses.
func FoldConceptAttempts(attempts []model.AttemptConceptStats) map[string]string {
	out := map[string]string{}
	for _, attempt := range attempts {
		for _, stat := range attempt.ConceptStats {
			if stat.ConceptName == "" {
				continue
			}
			if stat.Passed {
				out[stat.ConceptName] = model.ConceptPass
			} else if out[stat.ConceptName] != model.ConceptPass {
				out[stat.ConceptName] = model.ConceptFail
			}
		}
	}
	return out
}

// countMastered returns how many concepts in the map are PASS.
func countMastered(verdicts map[string]string) int {
	n := 0
	for _, v := range verdicts {
		if v == model.ConceptPass {
			n++
		}
	}
	return n
}
