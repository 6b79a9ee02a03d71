package sources

import (
	"cryptorewards-backend/internal/rewards"
)

var bitciDefinition = definition{
	platform: rewards.Platform{
		ID:      "bitci",
		Name:    "Bitci",
		Website: "https://www.bitci.com",
		LogoURL: "/images/exchanges/bitci-logo.png",
	},
	stakingPath:  "/tr/staking",
	campaignPath: "/tr/kampanyalar",
	headers: map[string]string{
		"Origin":  "https://www.bitci.com",
		"Referer": "https://www.bitci.com/",
	},
	staking:        stakingSelectors(".staking-card", ".staking-container", ".coin-card", ".stake-item"),
	campaigns:      campaignSelectors(".campaign-card", ".promotion-card", ".promo-container", ".campaign-container"),
	stakingScript:  stakingScripts,
	campaignScript: campaignScript,

	fallbackStaking: func() []rewards.StakingOffer {
		return fixed(
			rewards.StakingOffer{
				Coin:       "Bitcoin",
				Symbol:     "BTC",
				APY:        "5.2",
				LockupDays: 30,
				MinStaking: "0.01 BTC",
				Features:   []string{"Flexible", "Daily Rewards"},
				APYTrend:   []float64{5.1, 5.2, 5.3, 5.2, 5.2, 5.1, 5.2},
				DayChange:  "0.1",
			},
			rewards.StakingOffer{
				Coin:       "Ethereum",
				Symbol:     "ETH",
				APY:        "6.5",
				LockupDays: 60,
				MinStaking: "0.1 ETH",
				Features:   []string{"Lock Period"},
				APYTrend:   []float64{6.4, 6.5, 6.5, 6.6, 6.5, 6.5, 6.5},
				DayChange:  "0.0",
			},
			rewards.StakingOffer{
				Coin:       "Avalanche",
				Symbol:     "AVAX",
				APY:        "8.5",
				LockupDays: 30,
				MinStaking: "1 AVAX",
				Features:   []string{"Auto Renewal"},
				APYTrend:   []float64{8.4, 8.5, 8.6, 8.5, 8.4, 8.5, 8.5},
				DayChange:  "-0.1",
			},
		)
	},
	fallbackCampaigns: func() []rewards.Campaign {
		return []rewards.Campaign{
			{
				Name:         "Hoş Geldin Kampanyası",
				Description:  "Yeni üyeler için özel komisyon indirimi ve bonus fırsatı",
				ExpiryDate:   "2023-12-31",
				Requirements: []string{"Yeni Kullanıcı", "KYC Onayı"},
				Reward:       "100 TL Bonus",
			},
			{
				Name:         "Referans Programı",
				Description:  "Arkadaşlarınızı davet edin, işlem ücretlerinden komisyon kazanın",
				ExpiryDate:   rewards.ExpiryOngoing,
				Requirements: []string{"Onaylı Hesap"},
				Reward:       "İşlem hacminin %30'u kadar komisyon",
			},
		}
	},
}

// Bitci scrapes bitci.com.
type Bitci struct {
	exchange
}

func NewBitci(deps Deps) *Bitci {
	return &Bitci{exchange: newExchange(bitciDefinition, deps)}
}
