// literals.go
//
// Literal handlers. When a word resolves in no module, the interpreter
// tries these in order; the first that recognizes the text wins and the
// word becomes a push of the parsed value. Order matters: bool before
// float before datetime variants before int, so "TRUE" is a bool and
// "2.0" never parses as an int.
package forthic

import (
	"strconv"
	"strings"
	"time"
)

// LiteralHandler tries to parse text as a literal. tz is the interpreter's
// timezone, used for date wildcards and offset-less datetimes.
type LiteralHandler func(text string, tz *time.Location) (Value, bool)

func defaultLiteralHandlers() []LiteralHandler {
	return []LiteralHandler{
		parseBoolLiteral,
		parseFloatLiteral,
		parseZonedLiteral,
		parseDateLiteral,
		parseTimeLiteral,
		parseIntLiteral,
	}
}

func parseBoolLiteral(text string, _ *time.Location) (Value, bool) {
	switch text {
	case "TRUE":
		return Bool(true), true
	case "FALSE":
		return Bool(false), true
	}
	return Null, false
}

// parseFloatLiteral requires a "." so integers fall through to the int
// handler and keep their variant.
func parseFloatLiteral(text string, _ *time.Location) (Value, bool) {
	if !strings.Contains(text, ".") {
		return Null, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Null, false
	}
	return Float(f), true
}

func parseIntLiteral(text string, _ *time.Location) (Value, bool) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Null, false
	}
	return Int(n), true
}

// parseZonedLiteral parses ISO-8601 datetimes like 2025-05-04T10:15:00Z or
// 2025-05-04T10:15:00-07:00. Without an offset the interpreter timezone
// applies.
func parseZonedLiteral(text string, tz *time.Location) (Value, bool) {
	if !strings.Contains(text, "T") {
		return Null, false
	}
	layouts := []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			// "Z" pins the zone to UTC; a numeric offset keeps the instant
			// but takes the interpreter zone as its IANA identity.
			zone := zoneName(tz)
			if strings.HasSuffix(text, "Z") {
				zone = "UTC"
			}
			z, zerr := NewZonedTime(t, zone)
			if zerr != nil {
				return Null, false
			}
			return Zoned(z), true
		}
	}
	localLayouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, text, tz); err == nil {
			z, zerr := NewZonedTime(t, zoneName(tz))
			if zerr != nil {
				return Null, false
			}
			return Zoned(z), true
		}
	}
	return Null, false
}

func zoneName(tz *time.Location) string {
	if tz == nil {
		return "UTC"
	}
	return tz.String()
}

// parseDateLiteral parses YYYY-MM-DD. The wildcards YYYY, MM and DD take
// the corresponding component of today's date in the interpreter timezone.
func parseDateLiteral(text string, tz *time.Location) (Value, bool) {
	parts := strings.Split(text, "-")
	if len(parts) != 3 {
		return Null, false
	}
	now := time.Now().In(locOrUTC(tz))
	year, ok := dateComponent(parts[0], "YYYY", now.Year(), 4)
	if !ok {
		return Null, false
	}
	month, ok := dateComponent(parts[1], "MM", int(now.Month()), 2)
	if !ok || month < 1 || month > 12 {
		return Null, false
	}
	day, ok := dateComponent(parts[2], "DD", now.Day(), 2)
	if !ok || day < 1 || day > 31 {
		return Null, false
	}
	return Date(NewPlainDate(year, time.Month(month), day)), true
}

func dateComponent(part, wildcard string, current, width int) (int, bool) {
	if part == wildcard {
		return current, true
	}
	if len(part) != width {
		return 0, false
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseTimeLiteral parses clock times: 9:00, 22:15, 11:30 PM. AM/PM must
// be applied via the AM/PM words; here only the 24h "H:MM" form matches.
func parseTimeLiteral(text string, _ *time.Location) (Value, bool) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return Null, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return Null, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return Null, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Null, false
	}
	return Clock(TimeOfDay{Hour: hour, Minute: minute}), true
}

func locOrUTC(tz *time.Location) *time.Location {
	if tz == nil {
		return time.UTC
	}
	return tz
}
