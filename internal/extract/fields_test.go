package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCoin(t *testing.T) {
	cases := []struct {
		text, coin, symbol string
	}{
		{"Bitcoin (BTC)", "Bitcoin", "BTC"},
		{"  Avalanche ", "Avalanche", "Avalanche"},
		{"(ETH)", "ETH", "ETH"},
		{"Bitcoin (btc)", "Bitcoin (btc)", "Bitcoin (btc)"},
	}
	for _, c := range cases {
		coin, symbol := SplitCoin(c.text)
		require.Equal(t, c.coin, coin, c.text)
		require.Equal(t, c.symbol, symbol, c.text)
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		text string
		rate string
		ok   bool
	}{
		{"APY: 5,2%", "5.2", true},
		{"%12,5", "12.5", true},
		{"yıllık 8.50 %", "8.5", true},
		{"yok", "", false},
	}
	for _, c := range cases {
		rate, ok := ParsePercent(c.text)
		require.Equal(t, c.ok, ok, c.text)
		require.Equal(t, c.rate, rate, c.text)
	}
}

func TestParseLockupDays(t *testing.T) {
	cases := []struct {
		text string
		days int
		ok   bool
	}{
		{"30 Gün", 30, true},
		{"Kilit süresi: 90 gun", 90, true},
		{"60 days", 60, true},
		{"1 day", 1, true},
		{"Esnek", 0, true},
		{"Flexible", 0, true},
		{"soon", 0, false},
	}
	for _, c := range cases {
		days, ok := ParseLockupDays(c.text)
		require.Equal(t, c.ok, ok, c.text)
		require.Equal(t, c.days, days, c.text)
	}
}

func TestParseMinimum(t *testing.T) {
	minimum, ok := ParseMinimum("Min: 0,01 BTC")
	require.True(t, ok)
	require.Equal(t, "0.01 BTC", minimum)

	minimum, ok = ParseMinimum("100 USDT")
	require.True(t, ok)
	require.Equal(t, "100 USDT", minimum)

	_, ok = ParseMinimum("minimum yok")
	require.False(t, ok)

	require.Equal(t, "0.01 DOT", DefaultMinimum("DOT"))
}

func TestCollectTags(t *testing.T) {
	tags := CollectTags([]string{" Flexible ", "x", "", "Flexible", "Daily Rewards"})
	require.Equal(t, []string{"Flexible", "Daily Rewards"}, tags)
	require.Nil(t, CollectTags(nil))
}

func TestFilterRequirements(t *testing.T) {
	reqs := FilterRequirements([]string{
		"KYC Onayı",
		"Kampanya detayları",
		"Join the campaign now",
		"Promotion terms",
		"Verified Account",
	})
	require.Equal(t, []string{"KYC Onayı", "Verified Account"}, reqs)
}

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		text, expected string
	}{
		{"Son gün: 31.12.2023", "2023-12-31"},
		{"1/2/24", "2024-02-01"},
		{"Ends 2024-03-15", "2024-03-15"},
		{"31 Aralık 2023", "2023-12-31"},
		{"15 Şubat 2024", "2024-02-15"},
		{"30.02.2024", "Ongoing"},
		{"yakında", "Ongoing"},
		{"", "Ongoing"},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, ParseExpiry(c.text), c.text)
	}
}
