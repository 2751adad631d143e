package domain

import "time"

type ViewOutcome string

const (
	ViewRendered ViewOutcome = "rendered"
	ViewFailed   ViewOutcome = "failed"
)

// A CatalogView describes one fetch-and-render run.
type CatalogView struct {
	RunID    string
	Outcome  ViewOutcome
	Products int
	Duration time.Duration
	Error    string
	ViewedAt time.Time
}
