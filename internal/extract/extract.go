// Package extract turns exchange pages into staking offers and campaigns.
//
// Every page is parsed through the same cascade: card selectors tier by tier,
// then data embedded in inline scripts. Callers fall back to a static dataset
// with WithFallback when the cascade yields nothing.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/htmlutil"
	"cryptorewards-backend/internal/rewards"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/extract")

const (
	report_extract_record = "extract.record"
	report_extract_script = "extract.script"
)

// ErrNoRecords is returned when neither cards nor script data produced a
// single valid record.
var ErrNoRecords = errors.New("no records extracted")

// StakingSelectors is a strategy table for staking cards. Cards holds tiers
// of selectors, most specific first, the first tier that matches any element
// is used. Field selectors are tried in order within each card.
type StakingSelectors struct {
	Cards    [][]string
	Coin     []string
	APY      []string
	Lockup   []string
	Minimum  []string
	Features []string
}

type CampaignSelectors struct {
	Cards        [][]string
	Name         []string
	Description  []string
	Expiry       []string
	Requirements []string
	Reward       []string
}

func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func findCards(doc *goquery.Document, tiers [][]string) *goquery.Selection {
	for _, tier := range tiers {
		cards := htmlutil.AllOf(doc.Selection, tier)
		if cards.Length() > 0 {
			return cards
		}
	}
	return nil
}

func fieldText(card *goquery.Selection, selectors []string) string {
	found := htmlutil.FirstOf(card, selectors)
	if found == nil {
		return ""
	}
	return htmlutil.Text(found)
}

// guard runs fn for one record, a panic only loses that record.
func guard[T any](tel telemetry.API, index int, fn func() (T, bool)) (out T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			tel.ReportWarning(report_extract_record, fmt.Errorf("record %d: %v", index, r))
			ok = false
		}
	}()
	return fn()
}

func stakingFromCard(card *goquery.Selection, sel StakingSelectors) (rewards.StakingOffer, bool) {
	coin, symbol := SplitCoin(fieldText(card, sel.Coin))
	if coin == "" {
		return rewards.StakingOffer{}, false
	}

	offer := rewards.StakingOffer{
		Coin:   coin,
		Symbol: symbol,
		APY:    defaultAPY,
		Fees:   rewards.DefaultFees,
	}
	if apy, ok := ParsePercent(fieldText(card, sel.APY)); ok {
		offer.APY = apy
	}
	if days, ok := ParseLockupDays(fieldText(card, sel.Lockup)); ok {
		offer.LockupDays = days
	}
	offer.MinStaking = DefaultMinimum(symbol)
	if minimum, ok := ParseMinimum(fieldText(card, sel.Minimum)); ok {
		offer.MinStaking = minimum
	}
	offer.Features = CollectTags(htmlutil.Texts(htmlutil.AllOf(card, sel.Features)))
	if len(offer.Features) == 0 {
		offer.Features = []string{defaultCardFeature}
	}
	return offer, true
}

func campaignFromCard(card *goquery.Selection, sel CampaignSelectors) (rewards.Campaign, bool) {
	name := fieldText(card, sel.Name)
	if name == "" {
		return rewards.Campaign{}, false
	}

	campaign := rewards.Campaign{
		Name:        name,
		Description: fieldText(card, sel.Description),
		ExpiryDate:  ParseExpiry(fieldText(card, sel.Expiry)),
		Reward:      fieldText(card, sel.Reward),
	}
	if campaign.Reward == "" {
		campaign.Reward = rewards.DefaultReward
	}
	campaign.Requirements = FilterRequirements(htmlutil.Texts(htmlutil.AllOf(card, sel.Requirements)))
	if len(campaign.Requirements) == 0 {
		campaign.Requirements = []string{rewards.DefaultRequirement}
	}
	return campaign, true
}

func fromCards[T any](
	tel telemetry.API,
	cards *goquery.Selection,
	parse func(card *goquery.Selection) (T, bool),
) []T {
	var out []T
	cards.Each(func(i int, card *goquery.Selection) {
		record, ok := guard(tel, i, func() (T, bool) {
			return parse(card)
		})
		if !ok {
			tel.ReportDebug("skipped record", i)
			return
		}
		out = append(out, record)
	})
	return out
}

// StakingOffers runs the cascade for a staking page. Returned offers carry
// extracted fields only, trend, day change and rating are left to the caller.
func StakingOffers(
	ctx context.Context,
	doc *goquery.Document,
	sel StakingSelectors,
	script ScriptPattern,
	tel telemetry.API,
) ([]rewards.StakingOffer, error) {
	_, span := tracer.Start(ctx, "StakingOffers")
	defer span.End()

	if cards := findCards(doc, sel.Cards); cards != nil {
		offers := fromCards(tel, cards, func(card *goquery.Selection) (rewards.StakingOffer, bool) {
			return stakingFromCard(card, sel)
		})
		span.SetAttributes(attribute.Int("cards", cards.Length()))
		if len(offers) > 0 {
			return offers, nil
		}
	}

	items, err := script.find(doc)
	if err != nil {
		tel.ReportWarning(report_extract_script, err)
	}
	var offers []rewards.StakingOffer
	for i, item := range items {
		offer, ok := guard(tel, i, func() (rewards.StakingOffer, bool) {
			return stakingFromItem(item)
		})
		if ok {
			offers = append(offers, offer)
		}
	}
	if len(offers) > 0 {
		return offers, nil
	}
	return nil, ErrNoRecords
}

// Campaigns runs the cascade for a campaign page.
func Campaigns(
	ctx context.Context,
	doc *goquery.Document,
	sel CampaignSelectors,
	script ScriptPattern,
	tel telemetry.API,
) ([]rewards.Campaign, error) {
	_, span := tracer.Start(ctx, "Campaigns")
	defer span.End()

	if cards := findCards(doc, sel.Cards); cards != nil {
		campaigns := fromCards(tel, cards, func(card *goquery.Selection) (rewards.Campaign, bool) {
			return campaignFromCard(card, sel)
		})
		span.SetAttributes(attribute.Int("cards", cards.Length()))
		if len(campaigns) > 0 {
			return campaigns, nil
		}
	}

	items, err := script.find(doc)
	if err != nil {
		tel.ReportWarning(report_extract_script, err)
	}
	var campaigns []rewards.Campaign
	for i, item := range items {
		campaign, ok := guard(tel, i, func() (rewards.Campaign, bool) {
			return campaignFromItem(item)
		})
		if ok {
			campaigns = append(campaigns, campaign)
		}
	}
	if len(campaigns) > 0 {
		return campaigns, nil
	}
	return nil, ErrNoRecords
}
