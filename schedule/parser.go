// ABOUTME: This file parses natural-language Spanish schedule phrases into concrete instants
// ABOUTME: All dates resolve in fixed UTC-3 (Buenos Aires); the host timezone is never consulted
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cienaga/domain"
)

// BuenosAires is the fixed offset zone every schedule phrase resolves in.
// Argentina has not observed DST since 2009, so a fixed offset is exact.
var BuenosAires = time.FixedZone("-03", -3*60*60)

// Result holds the parsed future instants together with the raw phrase,
// which is kept as the screening's schedule fingerprint source.
type Result struct {
	Times        []time.Time
	OriginalText string
}

// Parser turns venue schedule phrases into future instants. The clock is
// injected so tests can pin the reference now.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: func() time.Time { return time.Now().In(BuenosAires) }}
}

// NewParserAt returns a parser with a fixed clock.
func NewParserAt(now func() time.Time) *Parser {
	return &Parser{now: now}
}

const word = `[a-záéíóúüñ]+`

var (
	// "Sábados 4 y 11 de octubre a las 18:00"
	rePairSameDay = regexp.MustCompile(word + `s?\s+(\d{1,2})\s+y\s+(\d{1,2})\s+de\s+(` + word + `)\s+a\s+las\s+(\d{1,2}):(\d{2})`)
	// "Viernes a las 20:00, a partir del 10 de octubre"
	reStartingFrom = regexp.MustCompile(word + `\s+a\s+las\s+(\d{1,2}):(\d{2}),\s+a\s+partir\s+del\s+(\d{1,2})\s+de\s+(` + word + `)`)
	// "Sábado 27 y domingo 28 de septiembre" with optional "a las HH:MM"
	rePairTwoDays = regexp.MustCompile(word + `\s+(\d{1,2})\s+y\s+` + word + `\s+(\d{1,2})\s+de\s+(` + word + `)(?:\s+a\s+las\s+(\d{1,2}):(\d{2}))?`)
	// "Sábados de septiembre a las 20:00"; the greedy group swallows the
	// plural "s", which weekdayNumber strips again on lookup.
	reWeekdayOfMonth = regexp.MustCompile(`(` + word + `)\s+de\s+(` + word + `)\s+a\s+las\s+(\d{1,2}):(\d{2})`)
	// "Sábados a las 22:00"
	reRecurring = regexp.MustCompile(`(` + word + `)\s+a\s+las\s+(\d{1,2}):(\d{2})`)
	// "Sábado 4 de octubre a las 20:00"
	reSingleDate = regexp.MustCompile(word + `\s+(\d{1,2})\s+de\s+(` + word + `)\s+a\s+las\s+(\d{1,2}):(\d{2})`)
)

// DefaultHour applies when a phrase carries no time of day.
const DefaultHour = 20

// Parse extracts every future instant a phrase describes. Unparseable
// input yields an empty Times slice, never an error; instants at or
// before now are dropped.
func (p *Parser) Parse(text string) Result {
	now := p.now().In(BuenosAires)
	lowered := strings.ToLower(strings.TrimSpace(text))

	var times []time.Time

	if strings.Contains(lowered, "\n") {
		times = p.parseStacked(lowered, now)
	} else {
		times = p.parseInline(lowered, now)
	}

	future := times[:0]
	for _, t := range times {
		if t.After(now) {
			future = append(future, t)
		}
	}

	return Result{Times: future, OriginalText: strings.TrimSpace(text)}
}

func (p *Parser) parseInline(text string, now time.Time) []time.Time {
	if m := rePairSameDay.FindStringSubmatch(text); m != nil {
		if month, ok := monthNumber(m[3]); ok {
			day1, day2 := atoi(m[1]), atoi(m[2])
			hour, minute := atoi(m[4]), atoi(m[5])
			return []time.Time{
				dateThisOrNextYear(day1, month, hour, minute, now),
				dateThisOrNextYear(day2, month, hour, minute, now),
			}
		}
	}

	if m := reStartingFrom.FindStringSubmatch(text); m != nil {
		if month, ok := monthNumber(m[4]); ok {
			return []time.Time{dateThisOrNextYear(atoi(m[3]), month, atoi(m[1]), atoi(m[2]), now)}
		}
	}

	if m := rePairTwoDays.FindStringSubmatch(text); m != nil {
		if month, ok := monthNumber(m[3]); ok {
			hour, minute := DefaultHour, 0
			if m[4] != "" {
				hour, minute = atoi(m[4]), atoi(m[5])
			}
			return []time.Time{
				dateThisOrNextYear(atoi(m[1]), month, hour, minute, now),
				dateThisOrNextYear(atoi(m[2]), month, hour, minute, now),
			}
		}
	}

	if m := reWeekdayOfMonth.FindStringSubmatch(text); m != nil {
		weekday, wok := weekdayNumber(m[1])
		month, mok := monthNumber(m[2])
		if wok && mok {
			return weekdaysInMonth(weekday, month, atoi(m[3]), atoi(m[4]), now)
		}
	}

	if m := reRecurring.FindStringSubmatch(text); m != nil {
		if weekday, ok := weekdayNumber(m[1]); ok {
			return []time.Time{nextWeekday(weekday, atoi(m[2]), atoi(m[3]), now)}
		}
	}

	if m := reSingleDate.FindStringSubmatch(text); m != nil {
		if month, ok := monthNumber(m[2]); ok {
			return []time.Time{dateThisOrNextYear(atoi(m[1]), month, atoi(m[3]), atoi(m[4]), now)}
		}
	}

	return nil
}

// parseStacked handles the stacked venue form where each token sits on its
// own line: weekday, day of month, month, then either an hour ("18:00hs")
// or an explicit year ("2025").
func (p *Parser) parseStacked(text string, now time.Time) []time.Time {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) < 4 {
		return nil
	}

	day := atoi(lines[1])
	month, ok := monthNumber(lines[2])
	if day == 0 || !ok {
		return nil
	}

	// The fourth token carries either the time of day or the year.
	fourth := strings.TrimSuffix(lines[3], "hs")
	if strings.Contains(fourth, ":") {
		parts := strings.SplitN(fourth, ":", 2)
		return []time.Time{dateThisOrNextYear(day, month, atoi(parts[0]), atoi(parts[1]), now)}
	}

	year := atoi(fourth)
	if year < 2000 || year > 2100 {
		return nil
	}

	return []time.Time{time.Date(year, month, day, DefaultHour, 0, 0, 0, BuenosAires)}
}

var months = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
	// Stacked-form abbreviations
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November,
	"dic": time.December,
}

func monthNumber(name string) (time.Month, bool) {
	month, ok := months[domain.Normalize(name)]
	return month, ok
}

var weekdays = map[string]time.Weekday{
	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "jueves": time.Thursday,
	"viernes": time.Friday, "sabado": time.Saturday,
}

func weekdayNumber(name string) (time.Weekday, bool) {
	normalized := domain.Normalize(name)
	if day, ok := weekdays[normalized]; ok {
		return day, true
	}
	// Plural forms whose trailing "s" the surrounding regex did not strip.
	if day, ok := weekdays[strings.TrimSuffix(normalized, "s")]; ok {
		return day, true
	}
	return 0, false
}

// dateThisOrNextYear builds the instant in the current year, rolling
// forward one year when the date already passed and no year was given.
func dateThisOrNextYear(day int, month time.Month, hour, minute int, now time.Time) time.Time {
	date := time.Date(now.Year(), month, day, hour, minute, 0, 0, BuenosAires)
	if date.Before(now) {
		date = time.Date(now.Year()+1, month, day, hour, minute, 0, 0, BuenosAires)
	}
	return date
}

// nextWeekday is the next strictly-future occurrence of the weekday.
func nextWeekday(weekday time.Weekday, hour, minute int, now time.Time) time.Time {
	daysUntil := int(weekday - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	target := now.AddDate(0, 0, daysUntil)
	return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, BuenosAires)
}

// weekdaysInMonth lists every future occurrence of the weekday within the
// named month. The month resolves to next year once it has ended.
func weekdaysInMonth(weekday time.Weekday, month time.Month, hour, minute int, now time.Time) []time.Time {
	year := now.Year()
	if month < now.Month() {
		year++
	}

	var dates []time.Time
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, BuenosAires).Day()

	for day := 1; day <= lastDay; day++ {
		date := time.Date(year, month, day, hour, minute, 0, 0, BuenosAires)
		if date.Weekday() == weekday && date.After(now) {
			dates = append(dates, date)
		}
	}

	return dates
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
