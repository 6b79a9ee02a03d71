package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var btcturkDefinition = definition{
	platform: rewards.Platform{
		ID:      "btcturk",
		Name:    "BtcTurk",
		Website: "https://www.btcturk.com",
		LogoURL: "/images/exchanges/btcturk-logo.png",
	},
	stakingPath:    "/staking",
	campaignPath:   "/kampanyalar",
	staking:        stakingSelectors(".staking-item", ".earn-card", ".staking-product"),
	campaigns:      campaignSelectors(".campaign-item", ".campaign-card", ".announcement-card"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Tether",
				Symbol:     "USDT",
				APY:        "8.0",
				LockupDays: 30,
				MinStaking: "100 USDT",
				Features:   []string{"Instant Unstake", "Daily Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Bitcoin",
				Symbol:     "BTC",
				APY:        "4.5",
				LockupDays: 60,
				MinStaking: "0.01 BTC",
				Features:   []string{"Auto Renewal"},
			},
			rewards.StakingOffer{
				Coin:       "Ethereum",
				Symbol:     "ETH",
				APY:        "5.2",
				LockupDays: 90,
				MinStaking: "0.1 ETH",
				Features:   []string{"Daily Rewards", "Flexible Duration"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "New User Bonus",
				Description:  "Get 10 USDT when you sign up and complete KYC verification",
				ExpiryDate:   "2023-12-31",
				Requirements: []string{"New Account", "KYC Verification"},
				Reward:       "10 USDT",
			},
			{
				Name:         "Referral Program",
				Description:  "Earn 50% of your friends' trading fees for 3 months",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Verified Account"},
				Reward:       "50% of trading fees",
			},
		}
	},
}

// BtcTurk scrapes btcturk.com.
type BtcTurk struct {
	exchange
}

func NewBtcTurk(deps Deps) *BtcTurk {
	return &BtcTurk{exchange: newExchange(btcturkDefinition, deps)}
}
