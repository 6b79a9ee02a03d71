// Package sources defines every exchange this service collects from.
package sources

import (
	"context"
	"math"
	"strings"

	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/chrono"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/enrich"
	"cryptorewards-backend/internal/extract"
	"cryptorewards-backend/internal/rewards"
	"cryptorewards-backend/internal/transport"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_source_fetch_staking   = "source.fetch-staking"
	report_source_fetch_campaigns = "source.fetch-campaigns"
)

// Source is a single exchange. Fetch methods never fail, when the live page
// cannot be used they return the exchange's fallback dataset.
type Source interface {
	ID() string
	Platform() rewards.Platform
	FetchStakingOffers(ctx context.Context) []rewards.StakingOffer
	FetchCampaignData(ctx context.Context) []rewards.Campaign
}

// Fetcher is the subset of the transport the sources depend on.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts transport.RequestOptions) (transport.Response, error)
}

type Deps struct {
	Fetcher  Fetcher
	Time     chrono.TimeAPI
	Enricher enrich.Enricher
	// Tel is the logging handle owned by the source.
	Tel telemetry.API
	// BaseURL replaces the exchange's website as the origin of page urls.
	BaseURL string
}

// definition is the strategy table of one exchange.
type definition struct {
	platform     rewards.Platform
	stakingPath  string
	campaignPath string
	headers      map[string]string

	staking        extract.StakingSelectors
	campaigns      extract.CampaignSelectors
	stakingScript  extract.ScriptPattern
	campaignScript extract.ScriptPattern

	fallbackStaking   func() []rewards.StakingOffer
	fallbackCampaigns func() []rewards.Campaign
}

// exchange implements Source for a definition, concrete exchanges embed it.
type exchange struct {
	def      definition
	baseURL  string
	fetcher  Fetcher
	time     chrono.TimeAPI
	enricher enrich.Enricher
	tel      telemetry.API
}

func newExchange(def definition, deps Deps) exchange {
	assert.NotNil(deps.Fetcher, "fetcher")
	assert.NotNil(deps.Time, "time")
	assert.NotNil(deps.Tel, "telemetry")
	assert.NotEmptyStr(def.platform.ID, "platform id")

	baseURL := def.platform.Website
	if deps.BaseURL != "" {
		baseURL = deps.BaseURL
	}
	return exchange{
		def:      def,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		fetcher:  deps.Fetcher,
		time:     deps.Time,
		enricher: deps.Enricher,
		tel:      telemetry.NewScopedAPI(def.platform.ID, deps.Tel),
	}
}

func (e exchange) ID() string {
	return e.def.platform.ID
}

func (e exchange) Platform() rewards.Platform {
	return e.def.platform
}

func (e exchange) page(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := e.fetcher.Fetch(ctx, e.baseURL+path, transport.RequestOptions{
		Headers: e.def.headers,
	})
	if err != nil {
		return nil, err
	}
	return extract.Parse(res.Body)
}

func (e exchange) FetchStakingOffers(ctx context.Context) []rewards.StakingOffer {
	offers := extract.WithFallback(
		func() ([]rewards.StakingOffer, error) {
			doc, err := e.page(ctx, e.def.stakingPath)
			if err != nil {
				return nil, err
			}
			offers, err := extract.StakingOffers(ctx, doc, e.def.staking, e.def.stakingScript, e.tel)
			if err != nil {
				return nil, err
			}
			for i := range offers {
				e.enricher.Apply(&offers[i])
			}
			return offers, nil
		},
		e.def.fallbackStaking,
		func(err error) {
			e.tel.ReportWarning(report_source_fetch_staking, err)
		},
	)

	now := e.time.Now()
	for i := range offers {
		offers[i].LastUpdated = now
	}
	e.tel.ReportDebug("staking offers collected", len(offers))
	return offers
}

func (e exchange) FetchCampaignData(ctx context.Context) []rewards.Campaign {
	campaigns := extract.WithFallback(
		func() ([]rewards.Campaign, error) {
			doc, err := e.page(ctx, e.def.campaignPath)
			if err != nil {
				return nil, err
			}
			return extract.Campaigns(ctx, doc, e.def.campaigns, e.def.campaignScript, e.tel)
		},
		e.def.fallbackCampaigns,
		func(err error) {
			e.tel.ReportWarning(report_source_fetch_campaigns, err)
		},
	)

	now := e.time.Now()
	for i := range campaigns {
		campaigns[i].LastUpdated = now
	}
	e.tel.ReportDebug("campaigns collected", len(campaigns))
	return campaigns
}

// fixed fills in the derived fields of fallback offers without randomness,
// so fallback snapshots only differ in their timestamps.
func fixed(offers ...rewards.StakingOffer) []rewards.StakingOffer {
	for i := range offers {
		o := &offers[i]
		base, err := rewards.RateValue(o.APY)
		if err != nil {
			base = 0
		}
		if o.Fees == "" {
			o.Fees = rewards.DefaultFees
		}
		if o.MinStaking == "" {
			o.MinStaking = extract.DefaultMinimum(o.Symbol)
		}
		if len(o.APYTrend) == 0 {
			o.APYTrend = steadyTrend(base)
		}
		if o.DayChange == "" {
			o.DayChange = "0.0"
		}
		o.Rating = enrich.Rating(base)
	}
	return offers
}

var steadyOffsets = [rewards.TrendPoints]float64{-0.02, -0.01, 0, 0.01, 0.02, 0.01, 0}

func steadyTrend(base float64) []float64 {
	trend := make([]float64, rewards.TrendPoints)
	for i, offset := range steadyOffsets {
		trend[i] = math.Round(base*(1+offset)*100) / 100
	}
	return trend
}
