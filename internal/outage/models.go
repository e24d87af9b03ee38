package outage

import (
	"errors"
	"time"

	"no-lights-schedule/internal/render"
	"no-lights-schedule/internal/schedule"
)

var (
	// ErrUnknownRegion is returned for regions with no configured source.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrRegionNotLoaded is returned for configured regions whose first
	// fetch has not succeeded yet.
	ErrRegionNotLoaded = errors.New("region data not yet loaded")
)

// Entry is the current dataset of one region.
type Entry struct {
	Region      string
	Dataset     *schedule.Dataset
	ContentHash string
	FetchedAt   time.Time
}

// RegionInfo is a short summary of a region for the regions list endpoint.
type RegionInfo struct {
	RegionID    string    `json:"region_id"`
	LastUpdated string    `json:"last_updated"`
	Update      string    `json:"update"`
	ContentHash string    `json:"content_hash"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// GroupInfo is an entry in the groups list with ID and human-readable name.
type GroupInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupsResponse is the response from the /groups endpoint.
type GroupsResponse struct {
	Region string      `json:"region"`
	Groups []GroupInfo `json:"groups"`
}

// SummaryResponse is the response from the /summary endpoint.
type SummaryResponse struct {
	Region    string              `json:"region"`
	Group     string              `json:"group"`
	GroupName string              `json:"group_name"`
	Update    string              `json:"update"`
	Summaries []render.DaySummary `json:"summaries"`
}
