package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cryptorewards-backend/internal/htmlutil"
	"cryptorewards-backend/internal/rewards"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
)

const (
	defaultAPY           = "0.0"
	defaultCardFeature   = "Flexible"
	defaultScriptFeature = "Standard Staking"
)

// ScriptPattern names the javascript variables a page may embed its data in,
// ex. `var stakingData = [{...}];`. Array literals are decoded as json5 so
// unquoted keys and trailing commas are accepted.
type ScriptPattern struct {
	Variables []string
}

type item map[string]any

func (p ScriptPattern) regexes() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(p.Variables))
	for i, name := range p.Variables {
		out[i] = regexp.MustCompile(`(?s)\b` + regexp.QuoteMeta(name) + `\s*=\s*(\[.*?\])\s*;`)
	}
	return out
}

// find returns the items of the first variable that decodes into a non-empty
// array. A decode failure is returned only if nothing was found at all.
func (p ScriptPattern) find(doc *goquery.Document) ([]item, error) {
	if len(p.Variables) == 0 {
		return nil, nil
	}
	regexes := p.regexes()

	var firstErr error
	var found []item
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		if len(script.Nodes) == 0 {
			return true
		}
		text := htmlutil.GetText(script.Nodes[0])
		for _, re := range regexes {
			for _, match := range re.FindAllStringSubmatch(text, -1) {
				var items []item
				err := json5.Unmarshal([]byte(match[1]), &items)
				if err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("decode script data: %w", err)
					}
					continue
				}
				if len(items) > 0 {
					found = items
					return false
				}
			}
		}
		return true
	})
	if len(found) > 0 {
		return found, nil
	}
	return nil, firstErr
}

// str returns the first present, non-empty value among keys as a string.
func (it item) str(keys ...string) string {
	for _, key := range keys {
		switch v := it[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func (it item) truthy(key string) bool {
	switch v := it[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	}
	return false
}

func (it item) strings(keys ...string) []string {
	for _, key := range keys {
		switch v := it[key].(type) {
		case []any:
			var texts []string
			for _, entry := range v {
				if s, ok := entry.(string); ok {
					texts = append(texts, s)
				}
			}
			if tags := CollectTags(texts); len(tags) > 0 {
				return tags
			}
		case string:
			if tags := CollectTags(strings.Split(v, ",")); len(tags) > 0 {
				return tags
			}
		}
	}
	return nil
}

func stakingFromItem(it item) (rewards.StakingOffer, bool) {
	coin := it.str("coin", "name", "coinName")
	if coin == "" {
		return rewards.StakingOffer{}, false
	}
	coin, symbol := SplitCoin(coin)
	if s := it.str("symbol", "coinSymbol"); s != "" {
		symbol = s
	}

	offer := rewards.StakingOffer{
		Coin:       coin,
		Symbol:     symbol,
		APY:        defaultAPY,
		MinStaking: DefaultMinimum(symbol),
		Fees:       rewards.DefaultFees,
	}
	if raw := it.str("apy", "rate", "interestRate"); raw != "" {
		if rate, err := rewards.NormalizeRate(raw); err == nil {
			offer.APY = rate
		}
	}
	if raw := it.str("lockupPeriod", "period", "duration"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days >= 0 {
			offer.LockupDays = days
		} else if days, ok := ParseLockupDays(raw); ok {
			offer.LockupDays = days
		}
	}
	if raw := it.str("minStaking", "minAmount"); raw != "" {
		if minimum, ok := ParseMinimum(raw); ok {
			offer.MinStaking = minimum
		} else if amount, err := rewards.NormalizeRate(raw); err == nil {
			offer.MinStaking = fmt.Sprintf("%s %s", amount, symbol)
		}
	}

	offer.Features = it.strings("features", "tags")
	if len(offer.Features) == 0 {
		switch {
		case it.truthy("flexible"):
			offer.Features = []string{"Flexible"}
		case it.truthy("autoRenewal"):
			offer.Features = []string{"Auto Renewal"}
		default:
			offer.Features = []string{defaultScriptFeature}
		}
	}
	if fees := it.str("fees", "fee"); fees != "" {
		offer.Fees = fees
	}
	return offer, true
}

func campaignFromItem(it item) (rewards.Campaign, bool) {
	name := it.str("name", "title", "campaignName")
	if name == "" {
		return rewards.Campaign{}, false
	}
	campaign := rewards.Campaign{
		Name:         name,
		Description:  it.str("description", "desc", "content"),
		ExpiryDate:   ParseExpiry(it.str("expiryDate", "endDate", "expiry", "deadline")),
		Requirements: FilterRequirements(it.strings("requirements", "conditions")),
		Reward:       it.str("reward", "prize", "bonus"),
	}
	if len(campaign.Requirements) == 0 {
		campaign.Requirements = []string{rewards.DefaultRequirement}
	}
	if campaign.Reward == "" {
		campaign.Reward = rewards.DefaultReward
	}
	return campaign, true
}
