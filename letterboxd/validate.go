package letterboxd

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reNoLetters = regexp.MustCompile(`^[^a-zA-Z]+$`)

// CleanDirectorName trims and collapses whitespace, rejecting names that
// are implausibly short, long, or letterless (scrape artifacts).
func CleanDirectorName(raw string) *string {
	cleaned := strings.Join(strings.Fields(raw), " ")

	if len(cleaned) < 2 || len(cleaned) > 100 {
		return nil
	}
	if reNoLetters.MatchString(cleaned) {
		return nil
	}

	return &cleaned
}

var reYear = regexp.MustCompile(`\d{4}`)

// ParseYear extracts a plausible film year from a string. Cinema starts
// in 1888; a small allowance covers announced future releases.
func ParseYear(raw string) *int {
	match := reYear.FindString(raw)
	if match == "" {
		return nil
	}

	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	if year < 1888 || year > time.Now().Year()+5 {
		return nil
	}

	return &year
}
