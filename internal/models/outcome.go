package models

import "time"

// OutcomeKind classifies what the reconciliation run decided for one
// candidate mod ID. Outcomes are transient: they drive the end-of-run
// digest and exit behavior and are never persisted.
type OutcomeKind string

const (
	OutcomeAdded     OutcomeKind = "added"
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeRemoved   OutcomeKind = "removed"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeUnchanged OutcomeKind = "unchanged"
	OutcomeSkipped   OutcomeKind = "skipped"
)

// Outcome records the decision for a single candidate.
type Outcome struct {
	ModID  int
	Kind   OutcomeKind
	Name   string
	Reason string
}

// Summary aggregates the outcomes of one reconciliation run for the
// notification digest.
type Summary struct {
	Outcomes []Outcome
	Duration time.Duration
}

// Add appends an outcome and returns it unchanged, so call sites can
// record and return in one statement.
func (s *Summary) Add(o Outcome) Outcome {
	s.Outcomes = append(s.Outcomes, o)
	return o
}

// Count returns the number of outcomes of the given kind.
func (s *Summary) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// ByKind returns the outcomes of the given kind, in decision order.
func (s *Summary) ByKind(kind OutcomeKind) []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// Changed reports whether the run produced any manifest mutation.
func (s *Summary) Changed() bool {
	for _, o := range s.Outcomes {
		switch o.Kind {
		case OutcomeAdded, OutcomeUpdated, OutcomeRemoved, OutcomeRejected:
			return true
		}
	}
	return false
}
