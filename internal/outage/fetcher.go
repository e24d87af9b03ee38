package outage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/metrics"
	"no-lights-schedule/internal/schedule"
)

// UpdateFunc is called after a region's dataset changed.
type UpdateFunc func(ctx context.Context, e *Entry)

// Fetcher periodically loads region datasets from their sources and keeps
// the latest good copy of each in memory.
type Fetcher struct {
	sources  map[string]Source
	interval time.Duration
	metrics  metrics.Recorder
	onUpdate UpdateFunc
	log      logger.Logger
	now      func() time.Time

	mu   sync.RWMutex
	data map[string]*Entry // keyed by region id
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMetrics reports fetch results to m.
func WithMetrics(m metrics.Recorder) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithOnUpdate registers fn to run after every dataset change.
func WithOnUpdate(fn UpdateFunc) Option {
	return func(f *Fetcher) { f.onUpdate = fn }
}

// WithLogger replaces the default logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// NewFetcher creates a new Fetcher with the given fetch interval.
func NewFetcher(sources map[string]Source, intervalSec int, opts ...Option) *Fetcher {
	f := &Fetcher{
		sources:  sources,
		interval: time.Duration(intervalSec) * time.Second,
		metrics:  metrics.Nop{},
		log:      logger.New("fetcher"),
		now:      time.Now,
		data:     make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start begins periodic fetching. It performs an initial fetch immediately,
// then fetches every interval. Blocks until ctx is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	f.FetchAll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.FetchAll(ctx)
		}
	}
}

// FetchAll refreshes every configured region. Failures are logged and the
// previous dataset of the failing region is kept.
func (f *Fetcher) FetchAll(ctx context.Context) {
	for _, region := range f.configured() {
		if _, err := f.Refresh(ctx, region); err != nil {
			f.log.Errorf("failed to fetch %s: %v", region, err)
		}
	}
}

// Refresh loads one region now. changed reports whether a new dataset
// replaced the previous one.
func (f *Fetcher) Refresh(ctx context.Context, region string) (changed bool, err error) {
	src, ok := f.sources[region]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	body, err := src.Load(ctx)
	if err != nil {
		f.metrics.Fetch(region, metrics.ResultError)
		return false, err
	}
	ds, err := schedule.Decode(body)
	if err != nil {
		f.metrics.Fetch(region, metrics.ResultError)
		return false, fmt.Errorf("decode %s: %w", region, err)
	}
	hash := contentHash(ds, body)

	f.mu.Lock()
	// Skip if data hasn't changed.
	if existing, ok := f.data[region]; ok && existing.ContentHash == hash {
		f.mu.Unlock()
		f.metrics.Fetch(region, metrics.ResultUnchanged)
		return false, nil
	}
	e := &Entry{
		Region:      region,
		Dataset:     schedule.Normalize(ds),
		ContentHash: hash,
		FetchedAt:   f.now(),
	}
	f.data[region] = e
	f.mu.Unlock()

	f.metrics.Fetch(region, metrics.ResultUpdated)
	f.log.Infof("updated %s (lastUpdated: %s, hash: %s)", region, ds.LastUpdated, hash)
	if f.onUpdate != nil {
		f.onUpdate(ctx, e)
	}
	return true, nil
}

// contentHash prefers the hash published with the dataset and falls back
// to hashing the raw body.
func contentHash(ds *schedule.Dataset, body []byte) string {
	if ds.Meta != nil && ds.Meta.ContentHash != "" {
		return ds.Meta.ContentHash
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Get returns the current entry of region.
func (f *Fetcher) Get(region string) (*Entry, error) {
	if _, ok := f.sources[region]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.data[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionNotLoaded, region)
	}
	return e, nil
}

// Regions returns info about all loaded regions, sorted by id.
func (f *Fetcher) Regions() []RegionInfo {
	now := f.now()
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]RegionInfo, 0, len(f.data))
	for region, e := range f.data {
		result = append(result, RegionInfo{
			RegionID:    region,
			LastUpdated: e.Dataset.LastUpdated,
			Update:      e.Dataset.LastUpdate(now),
			ContentHash: e.ContentHash,
			FetchedAt:   e.FetchedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegionID < result[j].RegionID })
	return result
}

func (f *Fetcher) configured() []string {
	regions := make([]string, 0, len(f.sources))
	for r := range f.sources {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}
