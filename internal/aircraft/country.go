package aircraft

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// country.json holds the ICAO 24-bit address blocks assigned to states
// by ICAO annex 10. Each entry covers the inclusive range [start, end]
// of transponder addresses allocated to that country.
//
//go:embed country.json
var countryRangesJSON []byte

type countryRange struct {
	Country string `json:"country"`
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
}

// CountryRanges resolves ICAO transponder numbers to the country that
// the address block is allocated to.
type CountryRanges struct {
	ranges []countryRange
}

// NewCountryRanges loads the embedded allocation table.
func NewCountryRanges() (*CountryRanges, error) {
	var ranges []countryRange
	if err := json.Unmarshal(countryRangesJSON, &ranges); err != nil {
		return nil, fmt.Errorf("loading country ranges: %w", err)
	}
	return &CountryRanges{ranges: ranges}, nil
}

// Country returns the country whose allocation block contains the given
// ICAO transponder number (lowercase or uppercase hex, e.g. "458d6b").
// It returns an empty string when the address is not in any known block.
func (c *CountryRanges) Country(icaoNumber string) (string, error) {
	number, err := strconv.ParseUint(strings.TrimSpace(icaoNumber), 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid icao number %q: %w", icaoNumber, err)
	}
	for _, r := range c.ranges {
		if number >= r.Start && number <= r.End {
			return r.Country, nil
		}
	}
	return "", nil
}
