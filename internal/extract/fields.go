package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cryptorewards-backend/internal/rewards"
)

var tickerRegex = regexp.MustCompile(`\s*\(([A-Z0-9]{2,10})\)`)

// SplitCoin splits "Bitcoin (BTC)" into its display name and ticker. Without
// a parenthetical ticker the whole text is used for both.
func SplitCoin(text string) (coin, symbol string) {
	text = strings.TrimSpace(text)
	match := tickerRegex.FindStringSubmatch(text)
	if match == nil {
		return text, text
	}
	coin = strings.TrimSpace(tickerRegex.ReplaceAllString(text, ""))
	if coin == "" {
		coin = match[1]
	}
	return coin, match[1]
}

var (
	percentSuffixRegex = regexp.MustCompile(`([\d.,]+)\s*%`)
	percentPrefixRegex = regexp.MustCompile(`%\s*([\d.,]+)`)
)

// ParsePercent finds a percentage in text ("5,2%", "%12,5", "APY: 8.0 %") and
// returns it as a dot-decimal string.
func ParsePercent(text string) (string, bool) {
	for _, re := range []*regexp.Regexp{percentSuffixRegex, percentPrefixRegex} {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		rate, err := rewards.NormalizeRate(match[1])
		if err != nil {
			continue
		}
		return rate, true
	}
	return "", false
}

var (
	lockupRegex   = regexp.MustCompile(`(?i)(\d+)\s*(gün|gun|days?)`)
	flexibleRegex = regexp.MustCompile(`(?i)(esnek|flexible)`)
)

// ParseLockupDays reads "30 gün", "60 days" or "Esnek" (flexible, 0 days).
func ParseLockupDays(text string) (int, bool) {
	match := lockupRegex.FindStringSubmatch(text)
	if match != nil {
		days, err := strconv.Atoi(match[1])
		if err == nil {
			return days, true
		}
	}
	if flexibleRegex.MatchString(text) {
		return 0, true
	}
	return 0, false
}

var minimumRegex = regexp.MustCompile(`([\d.,]+)\s*([A-Z]{2,10})`)

// ParseMinimum reads an "<amount> <UNIT>" pair out of text like
// "Min: 0,01 BTC".
func ParseMinimum(text string) (string, bool) {
	match := minimumRegex.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	amount, err := rewards.NormalizeRate(match[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s %s", amount, match[2]), true
}

// DefaultMinimum is the minimum stake assumed when a page does not state one.
func DefaultMinimum(symbol string) string {
	return fmt.Sprintf("0.01 %s", symbol)
}

// CollectTags trims, dedupes and drops tags shorter than two characters.
func CollectTags(texts []string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= 1 {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		tags = append(tags, text)
	}
	return tags
}

var requirementNoise = []string{"campaign", "promotion", "kampanya"}

// FilterRequirements collects requirement tags, dropping ones that mention
// the campaign itself.
func FilterRequirements(texts []string) []string {
	var out []string
	for _, tag := range CollectTags(texts) {
		lower := strings.ToLower(tag)
		noisy := false
		for _, noise := range requirementNoise {
			if strings.Contains(lower, noise) {
				noisy = true
				break
			}
		}
		if !noisy {
			out = append(out, tag)
		}
	}
	return out
}

var (
	numericDateRegex = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})`)
	isoDateRegex     = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	namedDateRegex   = regexp.MustCompile(`(\d{1,2})\s+(\pL+)\s+(\d{4})`)
)

var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayıs":   time.May,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"agustos": time.August,
	"eylül":   time.September,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasım":   time.November,
	"kasim":   time.November,
	"aralık":  time.December,
	"aralik":  time.December,
}

func formatDate(year, month, day int) (string, bool) {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseExpiry reads "31.12.2023", "31/12/23", "2023-12-31" or "31 Aralık
// 2023" into YYYY-MM-DD. Anything else is "Ongoing".
func ParseExpiry(text string) string {
	if match := isoDateRegex.FindStringSubmatch(text); match != nil {
		if date, ok := formatDate(atoi(match[1]), atoi(match[2]), atoi(match[3])); ok {
			return date
		}
	}
	if match := numericDateRegex.FindStringSubmatch(text); match != nil {
		if date, ok := formatDate(atoi(match[3]), atoi(match[2]), atoi(match[1])); ok {
			return date
		}
	}
	if match := namedDateRegex.FindStringSubmatch(text); match != nil {
		month, ok := turkishMonths[strings.ToLower(match[2])]
		if ok {
			if date, ok := formatDate(atoi(match[3]), int(month), atoi(match[1])); ok {
				return date
			}
		}
	}
	return rewards.ExpiryOngoing
}
