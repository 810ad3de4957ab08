package build

import "time"

// Report summarizes one completed build.
type Report struct {
	BuildID    string        `json:"build_id"`
	Files      int           `json:"files"`
	Rendered   int           `json:"rendered"`
	Copied     int           `json:"copied"`
	Hash       string        `json:"hash"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}
