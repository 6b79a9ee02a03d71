// Package rewards holds the normalized shape every exchange source produces.
package rewards

import (
	"errors"
	"fmt"
	"time"
)

const (
	TrendPoints = 7

	DefaultFees        = "0%"
	DefaultReward      = "Bonus Rewards"
	DefaultRequirement = "Verified Account"
	ExpiryOngoing      = "Ongoing"
)

// Platform describes a single exchange.
type Platform struct {
	// ID is the lowercase identifier, it also names the snapshot file.
	ID      string
	Name    string
	Website string
	LogoURL string
}

// StakingOffer is one staking product of an exchange.
type StakingOffer struct {
	Coin   string `json:"coin"`
	Symbol string `json:"symbol"`
	// APY is a dot-decimal string, ex. "5.2"
	APY string `json:"apy"`
	// LockupDays of 0 means flexible.
	LockupDays int       `json:"lockupPeriod,string"`
	MinStaking string    `json:"minStaking"`
	Features   []string  `json:"features"`
	Fees       string    `json:"fees"`
	APYTrend   []float64 `json:"apyTrend"`
	DayChange  string    `json:"dayChange"`
	Rating     float64   `json:"rating"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// Campaign is one promotional campaign of an exchange.
type Campaign struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// ExpiryDate is either YYYY-MM-DD or "Ongoing".
	ExpiryDate   string   `json:"expiryDate"`
	Requirements []string `json:"requirements"`
	Reward       string   `json:"reward"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// ExchangeSnapshot is everything known about one exchange at one point in time,
// it is always written and replaced as a whole.
type ExchangeSnapshot struct {
	Platform      string         `json:"platform"`
	Website       string         `json:"website"`
	LogoURL       string         `json:"logoUrl,omitempty"`
	StakingOffers []StakingOffer `json:"stakingOffers"`
	Campaigns     []Campaign     `json:"campaigns"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// NewSnapshot assembles a snapshot for a platform, nil slices are replaced with
// empty ones so consumers always see lists.
func NewSnapshot(p Platform, offers []StakingOffer, campaigns []Campaign, now time.Time) ExchangeSnapshot {
	if offers == nil {
		offers = []StakingOffer{}
	}
	if campaigns == nil {
		campaigns = []Campaign{}
	}
	return ExchangeSnapshot{
		Platform:      p.Name,
		Website:       p.Website,
		LogoURL:       p.LogoURL,
		StakingOffers: offers,
		Campaigns:     campaigns,
		LastUpdated:   now,
	}
}

var (
	ErrMissingName = errors.New("missing name")
	ErrInvalidRate = errors.New("invalid rate")
)

// Validate checks the invariants of a staking offer.
func (o StakingOffer) Validate() error {
	if o.Coin == "" {
		return fmt.Errorf("staking offer: %w", ErrMissingName)
	}
	if _, err := RateValue(o.APY); err != nil {
		return fmt.Errorf("staking offer %s: %w", o.Coin, err)
	}
	if o.LockupDays < 0 {
		return fmt.Errorf("staking offer %s: negative lockup period %d", o.Coin, o.LockupDays)
	}
	if len(o.Features) == 0 {
		return fmt.Errorf("staking offer %s: no features", o.Coin)
	}
	if len(o.APYTrend) != TrendPoints {
		return fmt.Errorf("staking offer %s: trend has %d points", o.Coin, len(o.APYTrend))
	}
	if o.Rating < 4 || o.Rating > 5 {
		return fmt.Errorf("staking offer %s: rating %.1f out of range", o.Coin, o.Rating)
	}
	return nil
}

// Validate checks the invariants of a campaign.
func (c Campaign) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("campaign: %w", ErrMissingName)
	}
	if len(c.Requirements) == 0 {
		return fmt.Errorf("campaign %s: no requirements", c.Name)
	}
	if c.ExpiryDate != ExpiryOngoing {
		_, err := time.Parse(time.DateOnly, c.ExpiryDate)
		if err != nil {
			return fmt.Errorf("campaign %s: expiry: %w", c.Name, err)
		}
	}
	return nil
}
