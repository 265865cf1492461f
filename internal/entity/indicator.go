package entity

import "unicode"

// Verdict is the combined outcome of an indicator lookup
type Verdict string

const (
	VerdictMalicious Verdict = "Malicious"
	VerdictClean     Verdict = "Clean"
	VerdictUnknown   Verdict = "Unknown"
)

// ProviderResult is the normalized answer of a single threat intel provider
type ProviderResult struct {
	Provider    string         `json:"provider"`
	IsMalicious bool           `json:"is_malicious"`
	Score       int            `json:"score"` // 0-100 scale
	Raw         map[string]any `json:"raw"`
}

// AggregatedResult is the combined answer for one indicator
type AggregatedResult struct {
	Query     string                    `json:"query"`
	Verdict   Verdict                   `json:"verdict"`
	Score     int                       `json:"score"` // 0-100 scale
	Providers map[string]ProviderResult `json:"providers"`
	Reasons   []string                  `json:"reasons"`
}

// IsDomain reports whether the indicator should be treated as a domain name.
// Anything containing a letter is a domain, everything else an IP address.
// No syntax validation happens beyond that.
func IsDomain(indicator string) bool {
	for _, r := range indicator {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
