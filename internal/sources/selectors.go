package sources

import "cryptorewards-backend/internal/extract"

// generic card selectors tried after an exchange's own selectors.
var (
	genericStakingCards  = []string{".card", ".product-card", ".coin-item", ".crypto-staking"}
	genericCampaignCards = []string{".card", ".promotion", ".promo", "article"}
)

var (
	coinFields     = []string{".coin-name", ".asset-name", ".currency-name", "h3", ".title"}
	apyFields      = []string{".apy", ".apy-value", ".apy-rate", ".rate", ".interest-rate"}
	lockupFields   = []string{".lockup", ".period", ".duration", ".lock-period"}
	minimumFields  = []string{".minimum", ".min-amount", ".min-stake"}
	featureFields  = []string{".feature", ".tag", ".badge", ".label"}
	nameFields     = []string{"h2", "h3", ".title", ".campaign-title", ".promo-title"}
	descFields     = []string{"p", ".description", ".content", ".campaign-description"}
	expiryFields   = []string{".expiry", ".deadline", ".end-date", ".date"}
	requireFields  = []string{".requirement", ".condition", ".criteria", "li"}
	rewardFields   = []string{".reward", ".prize", ".bonus"}
	stakingScripts = extract.ScriptPattern{Variables: []string{"stakingData", "stakingProducts"}}
	campaignScript = extract.ScriptPattern{Variables: []string{"campaignData", "campaigns"}}
)

// stakingSelectors builds a strategy table with the exchange's own card
// selectors first and the generic ones last.
func stakingSelectors(cards ...string) extract.StakingSelectors {
	return extract.StakingSelectors{
		Cards:    [][]string{cards, genericStakingCards},
		Coin:     coinFields,
		APY:      apyFields,
		Lockup:   lockupFields,
		Minimum:  minimumFields,
		Features: featureFields,
	}
}

func campaignSelectors(cards ...string) extract.CampaignSelectors {
	return extract.CampaignSelectors{
		Cards:        [][]string{cards, genericCampaignCards},
		Name:         nameFields,
		Description:  descFields,
		Expiry:       expiryFields,
		Requirements: requireFields,
		Reward:       rewardFields,
	}
}
