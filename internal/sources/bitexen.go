package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var bitexenDefinition = definition{
	platform: rewards.Platform{
		ID:      "bitexen",
		Name:    "Bitexen",
		Website: "https://www.bitexen.com",
		LogoURL: "/images/exchanges/bitexen-logo.png",
	},
	stakingPath:    "/staking",
	campaignPath:   "/kampanyalar",
	staking:        stakingSelectors(".staking-box", ".stake-card", ".earn-product"),
	campaigns:      campaignSelectors(".campaign-box", ".campaign-card", ".news-card"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Tether",
				Symbol:     "USDT",
				APY:        "10.0",
				LockupDays: 30,
				MinStaking: "50 USDT",
				Features:   []string{"Daily Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Avalanche",
				Symbol:     "AVAX",
				APY:        "7.8",
				LockupDays: 0,
				MinStaking: "1 AVAX",
				Features:   []string{"Flexible"},
			},
			rewards.StakingOffer{
				Coin:       "Solana",
				Symbol:     "SOL",
				APY:        "6.9",
				LockupDays: 14,
				MinStaking: "1 SOL",
				Features:   []string{"Auto Renewal", "Weekly Rewards"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "Staking Haftası",
				Description:  "Seçili coinlerde staking yapan kullanıcılara ek getiri",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"KYC Onayı", "Minimum 1.000 TL staking"},
				Reward:       "%2 ek APY",
			},
			{
				Name:         "Arkadaşını Getir",
				Description:  "Davet ettiğin her arkadaşın ilk işleminde ikiniz de bonus kazanın",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Onaylı Hesap"},
				Reward:       "50 TL Bonus",
			},
		}
	},
}

// Bitexen scrapes bitexen.com.
type Bitexen struct {
	exchange
}

func NewBitexen(deps Deps) *Bitexen {
	return &Bitexen{exchange: newExchange(bitexenDefinition, deps)}
}
