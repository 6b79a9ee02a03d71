// Package collector runs collection cycles over the registered sources.
package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/chrono"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/rewards"
	"cryptorewards-backend/internal/sources"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"
)

const (
	report_collector_fetch_staking   = "collector.fetch-staking"
	report_collector_fetch_campaigns = "collector.fetch-campaigns"
	report_collector_run_source      = "collector.run-source"
	report_collector_staking_offers  = "collector.staking-offers"
	report_collector_campaigns       = "collector.campaigns"
	report_collector_cycle_succeeded = "collector.cycle-succeeded"
	report_collector_cycle_failed    = "collector.cycle-failed"
	report_collector_history         = "collector.history"
)

// SnapshotWriter persists a snapshot for a source.
type SnapshotWriter interface {
	Save(id string, snapshot rewards.ExchangeSnapshot) error
}

// RunRecord is the outcome of collecting one source in one cycle.
type RunRecord struct {
	CycleID       string    `json:"cycleId"`
	Source        string    `json:"source"`
	OK            bool      `json:"ok"`
	StakingOffers int       `json:"stakingOffers"`
	Campaigns     int       `json:"campaigns"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Error         string    `json:"error,omitempty"`
}

// HistoryWriter keeps a record of every source run.
type HistoryWriter interface {
	Record(ctx context.Context, run RunRecord) error
}

type Options struct {
	// Concurrency bounds how many sources are collected at once, values below
	// 1 collect sequentially.
	Concurrency int
	// History is optional.
	History HistoryWriter
}

type Collector struct {
	sources     []sources.Source
	byID        map[string]sources.Source
	store       SnapshotWriter
	time        chrono.TimeAPI
	tel         telemetry.API
	concurrency int
	history     HistoryWriter
}

func New(
	srcs []sources.Source,
	store SnapshotWriter,
	time chrono.TimeAPI,
	tel telemetry.API,
	opts Options,
) *Collector {
	assert.NotNil(store, "store")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "telemetry")

	byID := make(map[string]sources.Source, len(srcs))
	for _, src := range srcs {
		byID[src.ID()] = src
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		sources:     srcs,
		byID:        byID,
		store:       store,
		time:        time,
		tel:         telemetry.NewScopedAPI("collector", tel),
		concurrency: concurrency,
		history:     opts.History,
	}
}

// IDs returns the ids of the sources in registration order.
func (c *Collector) IDs() []string {
	ids := make([]string, len(c.sources))
	for i, src := range c.sources {
		ids[i] = src.ID()
	}
	return ids
}

func guard(tel telemetry.API, reportID string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			tel.ReportBroken(reportID, fmt.Errorf("panic: %v", r))
		}
	}()
	fn()
}

// Collect fetches staking offers and campaigns of a source concurrently and
// assembles the snapshot once both are done. It never returns nil lists.
func (c *Collector) Collect(ctx context.Context, src sources.Source) rewards.ExchangeSnapshot {
	tel := telemetry.NewScopedAPI(src.ID(), c.tel)

	var offers []rewards.StakingOffer
	var campaigns []rewards.Campaign

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		guard(tel, report_collector_fetch_staking, func() {
			offers = src.FetchStakingOffers(ctx)
		})
	}()
	go func() {
		defer wg.Done()
		guard(tel, report_collector_fetch_campaigns, func() {
			campaigns = src.FetchCampaignData(ctx)
		})
	}()
	wg.Wait()

	return rewards.NewSnapshot(src.Platform(), offers, campaigns, c.time.Now())
}

// runSource collects and saves one source, any failure is reported and
// turned into false.
func (c *Collector) runSource(ctx context.Context, cycleID string, src sources.Source) (ok bool) {
	tel := telemetry.NewScopedAPI(src.ID(), c.tel)
	run := RunRecord{
		CycleID:   cycleID,
		Source:    src.ID(),
		StartedAt: c.time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			tel.ReportBroken(report_collector_run_source, err)
			run.Error = err.Error()
			ok = false
		}
		run.OK = ok
		run.FinishedAt = c.time.Now()
		c.record(ctx, tel, run)
	}()

	snapshot := c.Collect(ctx, src)
	run.StakingOffers = len(snapshot.StakingOffers)
	run.Campaigns = len(snapshot.Campaigns)

	err := c.store.Save(src.ID(), snapshot)
	if err != nil {
		tel.ReportBroken(report_collector_run_source, err)
		run.Error = err.Error()
		return false
	}

	tel.ReportCount(report_collector_staking_offers, int64(run.StakingOffers))
	tel.ReportCount(report_collector_campaigns, int64(run.Campaigns))
	return true
}

func (c *Collector) record(ctx context.Context, tel telemetry.API, run RunRecord) {
	if c.history == nil {
		return
	}
	err := c.history.Record(ctx, run)
	if err != nil {
		tel.ReportWarning(report_collector_history, err)
	}
}

// RunAll runs one cycle over every source. Sources run in parallel up to the
// configured concurrency. Once ctx is done no further source is started,
// sources already started finish with their own timeouts.
func (c *Collector) RunAll(ctx context.Context) map[string]bool {
	cycleID := uuid.NewString()
	c.tel.ReportDebug("cycle started", cycleID, len(c.sources))

	results := make(map[string]bool, len(c.sources))
	var resultsLock sync.Mutex
	setResult := func(id string, ok bool) {
		resultsLock.Lock()
		defer resultsLock.Unlock()
		results[id] = ok
	}

	semaphore := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	for _, src := range c.sources {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			setResult(src.ID(), false)
			continue
		}

		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()
			defer func() { <-semaphore }()
			setResult(src.ID(), c.runSource(context.WithoutCancel(ctx), cycleID, src))
		}(src)
	}
	wg.Wait()

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	c.tel.ReportCount(report_collector_cycle_succeeded, int64(succeeded))
	c.tel.ReportCount(report_collector_cycle_failed, int64(len(results)-succeeded))
	c.tel.ReportDebug("cycle finished", cycleID)
	return results
}

// RunOne runs a single source by id. An unknown id returns false and an
// error wrapping sources.ErrUnknownSource without touching any snapshot.
func (c *Collector) RunOne(ctx context.Context, id string) (bool, error) {
	src, ok := c.byID[normalizeID(id)]
	if !ok {
		if suggestion := c.suggest(id); suggestion != "" {
			return false, fmt.Errorf("%w: '%s', did you mean '%s'?", sources.ErrUnknownSource, id, suggestion)
		}
		return false, fmt.Errorf("%w: '%s'", sources.ErrUnknownSource, id)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return c.runSource(context.WithoutCancel(ctx), uuid.NewString(), src), nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Has reports whether a source with the given id is registered.
func (c *Collector) Has(id string) bool {
	_, ok := c.byID[normalizeID(id)]
	return ok
}

func (c *Collector) suggest(id string) string {
	id = normalizeID(id)
	best := ""
	bestSimilarity := 0.0
	for _, known := range c.IDs() {
		similarity := matchr.JaroWinkler(id, known, false)
		if similarity > bestSimilarity {
			best = known
			bestSimilarity = similarity
		}
	}
	if bestSimilarity < 0.85 {
		return ""
	}
	return best
}
