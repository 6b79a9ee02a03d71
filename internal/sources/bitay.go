package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var bitayDefinition = definition{
	platform: rewards.Platform{
		ID:      "bitay",
		Name:    "Bitay",
		Website: "https://www.bitay.com",
		LogoURL: "/images/exchanges/bitay-logo.png",
	},
	stakingPath:    "/tr/staking",
	campaignPath:   "/tr/kampanyalar",
	staking:        stakingSelectors(".stake-box", ".staking-card", ".earn-row"),
	campaigns:      campaignSelectors(".kampanya-card", ".campaign-card", ".promo-box"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Bitcoin",
				Symbol:     "BTC",
				APY:        "3.9",
				LockupDays: 30,
				MinStaking: "0.005 BTC",
				Features:   []string{"Lock Period"},
			},
			rewards.StakingOffer{
				Coin:       "Tether",
				Symbol:     "USDT",
				APY:        "7.2",
				LockupDays: 0,
				MinStaking: "10 USDT",
				Features:   []string{"Flexible", "Daily Rewards"},
			},
			rewards.StakingOffer{
				Coin:       "Polygon",
				Symbol:     "POL",
				APY:        "6.3",
				LockupDays: 30,
				MinStaking: "50 POL",
				Features:   []string{"Auto Renewal"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "Yeni Üye Kampanyası",
				Description:  "Kayıt olup kimlik doğrulamasını tamamlayan üyelere hoş geldin bonusu",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Yeni Kullanıcı", "KYC Onayı"},
				Reward:       "25 TL Bonus",
			},
		}
	},
}

// Bitay scrapes bitay.com.
type Bitay struct {
	exchange
}

func NewBitay(deps Deps) *Bitay {
	return &Bitay{exchange: newExchange(bitayDefinition, deps)}
}
