package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var paribuDefinition = definition{
	platform: rewards.Platform{
		ID:      "paribu",
		Name:    "Paribu",
		Website: "https://www.paribu.com",
		LogoURL: "/images/exchanges/paribu-logo.png",
	},
	stakingPath:    "/staking",
	campaignPath:   "/kampanyalar",
	staking:        stakingSelectors(".staking-card", ".staking-row", ".earn-item"),
	campaigns:      campaignSelectors(".campaign", ".campaign-box", ".event-card"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Ethereum",
				Symbol:     "ETH",
				APY:        "7.5",
				LockupDays: 60,
				MinStaking: "0.1 ETH",
				Features:   []string{"Auto Renewal"},
			},
			rewards.StakingOffer{
				Coin:       "Polkadot",
				Symbol:     "DOT",
				APY:        "12.0",
				LockupDays: 30,
				MinStaking: "5 DOT",
				Features:   []string{"Flexible Duration", "Weekly Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Cardano",
				Symbol:     "ADA",
				APY:        "8.2",
				LockupDays: 45,
				MinStaking: "100 ADA",
				Features:   []string{"Daily Rewards", "No Lock-up"},
			},
			rewards.StakingOffer{
				Coin:       "Avalanche",
				Symbol:     "AVAX",
				APY:        "9.0",
				LockupDays: 30,
				MinStaking: "1 AVAX",
				Features:   []string{"Auto Compound"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "Referral Program",
				Description:  "Earn 30% commission on your referrals' trading fees for 6 months",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Verified Account"},
				Reward:       "30% of trading fees",
			},
			{
				Name:         "Trading Competition",
				Description:  "Top 100 traders by volume share a prize pool of 10,000 USDT",
				ExpiryDate:   "2023-08-31",
				Requirements: []string{"Minimum 5,000 TRY trading volume"},
				Reward:       "Share of 10,000 USDT",
			},
			{
				Name:         "Learn & Earn",
				Description:  "Complete short quizzes about blockchain projects and earn tokens",
				ExpiryDate:   "2023-09-15",
				Requirements: []string{"Verified Account", "Quiz Completion"},
				Reward:       "Up to 25 USDT in various tokens",
			},
		}
	},
}

// Paribu scrapes paribu.com.
type Paribu struct {
	exchange
}

func NewParibu(deps Deps) *Paribu {
	return &Paribu{exchange: newExchange(paribuDefinition, deps)}
}
