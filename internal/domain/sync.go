package domain

import "time"

// AggregateStats holds statistics about one aggregation pass.
type AggregateStats struct {
	Sources        int
	Succeeded      int
	Empty          int
	Failed         int
	Fetched        int
	DuplicatesURL  int
	DuplicatesNear int
	Returned       int
	Duration       time.Duration
}

// RefreshStats describes what an ingest refresh did to the catalog.
type RefreshStats struct {
	Aggregate AggregateStats
	Mode      RefreshMode
	Inserted  int
	Updated   int
	Total     int
	Published int
	Errors    int
	Duration  time.Duration
}

type RefreshMode string

const (
	RefreshMerge   RefreshMode = "merge"
	RefreshReplace RefreshMode = "replace"
)
