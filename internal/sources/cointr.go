package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var cointrDefinition = definition{
	platform: rewards.Platform{
		ID:      "cointr",
		Name:    "CoinTR",
		Website: "https://www.cointr.com",
		LogoURL: "/images/exchanges/cointr-logo.png",
	},
	stakingPath:    "/tr/earn",
	campaignPath:   "/tr/campaigns",
	staking:        stakingSelectors(".earn-card", ".savings-item", ".staking-card"),
	campaigns:      campaignSelectors(".activity-card", ".campaign-card", ".event-item"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Tether",
				Symbol:     "USDT",
				APY:        "9.5",
				LockupDays: 60,
				MinStaking: "100 USDT",
				Features:   []string{"Daily Rewards", "Lock Period"},
			},
			rewards.StakingOffer{
				Coin:       "TRON",
				Symbol:     "TRX",
				APY:        "4.1",
				LockupDays: 0,
				MinStaking: "100 TRX",
				Features:   []string{"Flexible"},
			},
			rewards.StakingOffer{
				Coin:       "BNB",
				Symbol:     "BNB",
				APY:        "3.5",
				LockupDays: 30,
				MinStaking: "0.1 BNB",
				Features:   []string{"Auto Renewal"},
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "Sıfır Komisyon",
				Description:  "Seçili paritelerde maker işlemlerinde komisyon alınmaz",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Onaylı Hesap"},
				Reward:       "%0 maker komisyonu",
			},
			{
				Name:         "İlk Yatırım Bonusu",
				Description:  "İlk TL yatırımını yapan yeni kullanıcılara USDT hediye",
				ExpiryDate:   "2024-06-30",
				Requirements: []string{"Yeni Kullanıcı", "KYC Onayı"},
				Reward:       "20 USDT",
			},
		}
	},
}

// CoinTR scrapes cointr.com.
type CoinTR struct {
	exchange
}

func NewCoinTR(deps Deps) *CoinTR {
	return &CoinTR{exchange: newExchange(cointrDefinition, deps)}
}
