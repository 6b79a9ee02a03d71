package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var icrypexDefinition = definition{
	platform: rewards.Platform{
		ID:      "icrypex",
		Name:    "ICRYPEX",
		Website: "https://www.icrypex.com",
		LogoURL: "/images/exchanges/icrypex-logo.png",
	},
	stakingPath:    "/staking",
	campaignPath:   "/kampanyalar",
	staking:        stakingSelectors(".staking-card", ".staking-list-item", ".pool-card"),
	campaigns:      campaignSelectors(".campaign-card", ".campaign-list-item", ".duyuru"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "ICRYPEX Token",
				Symbol:     "ICPX",
				APY:        "15.0",
				LockupDays: 90,
				MinStaking: "1000 ICPX",
				Features:   []string{"Lock Period", "Monthly Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Cosmos",
				Symbol:     "ATOM",
				APY:        "14.5",
				LockupDays: 21,
				MinStaking: "1 ATOM",
				Features:   []string{"Daily Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Ethereum",
				Symbol:     "ETH",
				APY:        "4.8",
				LockupDays: 0,
				MinStaking: "0.05 ETH",
				Features:   []string{"Flexible"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "ICPX Staking Ödülü",
				Description:  "ICPX stake eden kullanıcılara işlem ücretlerinde indirim",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Minimum 1000 ICPX"},
				Reward:       "%25 komisyon indirimi",
			},
		}
	},
}

// ICRYPEX scrapes icrypex.com.
type ICRYPEX struct {
	exchange
}

func NewICRYPEX(deps Deps) *ICRYPEX {
	return &ICRYPEX{exchange: newExchange(icrypexDefinition, deps)}
}
