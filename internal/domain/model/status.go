package model

import "time"

// StatusInfo is what /status reports.
type StatusInfo struct {
	Now     time.Time
	Uptime  time.Duration
	Sources []FileSource
}
