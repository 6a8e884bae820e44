// Package extract recovers structured fields from the free-form markdown the
// AI produces for the 16-question bid audit. The model output has no
// guaranteed formatting, so everything here is best-effort pattern matching:
// a miss resolves to a named default and extraction never fails.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Defaults returned when a field cannot be located in the text.
const (
	DefaultOrganization = "Undefined Organization"
	DefaultObject       = "Undefined Object"
	DefaultDate         = "Date Pending"
	DefaultPlatform     = "Check the document"
	DefaultTime         = "09:00 (estimated)"
)

const (
	maxObjectLen   = 75
	maxPlatformLen = 50
)

// KeyDateTag is the literal token the audit prompt instructs the model to
// prepend to its answer to question 5. Producer (prompt) and consumer (this
// regex) must agree on it bit-exact.
const KeyDateTag = "KEY_DATE:"

var (
	reOrganization = regexp.MustCompile(`(?i)(?:1\.|contracting body|contracting authority|órgão).*?[:\-?]\s*(.*?)(?:\n|2\.|$)`)
	reObject       = regexp.MustCompile(`(?is)(?:2\.|object|objeto).*?[:\-?]\s*(.*?)(?:\n|3\.|$)`)
	reKeyDateTag   = regexp.MustCompile(KeyDateTag + `\s*(\d{2}/\d{2}/\d{4})`)
	reQuestion5    = regexp.MustCompile(`(?is)5\.(.*?)(?:6\.|SCHEDULE|CRONOGRAMA|\n\n|$)`)
	reDate         = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	rePlatform     = regexp.MustCompile(`(?i)(?:platform|portal|electronic site|electronic address|plataforma|sítio eletrônico|endereço eletrônico).*?[:\-?]\s*(.*?)(?:\n|\.|,)`)
	reTime         = regexp.MustCompile(`(\d{2}[:h]\d{2})`)
)

// Fields is the ephemeral structured view of a report's text body. It is
// recomputed on demand and never persisted.
type Fields struct {
	Organization string
	Object       string
	Date         string
	Platform     string
	Time         string
}

// ExtractFields pulls the five display fields out of a report body.
// Every field degrades to its default when the text does not match.
func ExtractFields(text string) Fields {
	return Fields{
		Organization: Organization(text),
		Object:       object(text),
		Date:         KeyDate(text),
		Platform:     platform(text),
		Time:         sessionTime(text),
	}
}

// Organization locates the answer to question 1.
func Organization(text string) string {
	m := reOrganization.FindStringSubmatch(text)
	if m == nil {
		return DefaultOrganization
	}
	org := strings.TrimSpace(strings.ReplaceAll(m[1], "*", ""))
	if org == "" {
		return DefaultOrganization
	}
	return org
}

func object(text string) string {
	m := reObject.FindStringSubmatch(text)
	if m == nil {
		return DefaultObject
	}
	obj := strings.ReplaceAll(m[1], "*", "")
	obj = strings.TrimSpace(strings.ReplaceAll(obj, "\n", " "))
	if obj == "" {
		return DefaultObject
	}
	if len(obj) > maxObjectLen {
		obj = obj[:maxObjectLen] + "..."
	}
	return obj
}

// KeyDate returns the session/proposal date as DD/MM/YYYY. The explicit
// KEY_DATE tag wins wherever it appears; otherwise the question-5 segment is
// scanned for any date-shaped substring.
func KeyDate(text string) string {
	if m := reKeyDateTag.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if seg := reQuestion5.FindStringSubmatch(text); seg != nil {
		if m := reDate.FindString(seg[1]); m != "" {
			return m
		}
	}
	return DefaultDate
}

func platform(text string) string {
	m := rePlatform.FindStringSubmatch(text)
	if m == nil {
		return DefaultPlatform
	}
	p := strings.TrimSpace(m[1])
	if len(p) > maxPlatformLen {
		p = p[:maxPlatformLen]
	}
	p = strings.ReplaceAll(p, "https://", "")
	p = strings.ReplaceAll(p, "http://", "")
	p = strings.ReplaceAll(p, "www.", "")
	p = strings.TrimRight(p, "/")
	if len(p) <= 3 {
		return DefaultPlatform
	}
	return p
}

func sessionTime(text string) string {
	m := reTime.FindStringSubmatch(text)
	if m == nil {
		return DefaultTime
	}
	return strings.Replace(m[1], "h", ":", 1)
}

// BuildDisplayTitle composes the persisted report title from the body text.
// The title is the scanner's only source for the key date, so it must always
// be well-formed even for garbage input.
func BuildDisplayTitle(text string) string {
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("Edital Processed on %s", time.Now().Format("02/01/2006"))
	}
	return fmt.Sprintf("Edital %s | %s", Organization(text), KeyDate(text))
}

// ISODateFromTitle converts the first DD/MM/YYYY substring of a title into
// YYYY-MM-DD, the join key for calendar placement. The second return is false
// when the title carries no date.
func ISODateFromTitle(title string) (string, bool) {
	m := reDate.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1]), true
}

// DateFromTitle parses the first DD/MM/YYYY substring of a title into a
// calendar date. ok is false when no date pattern is present or the digits do
// not form a real date.
func DateFromTitle(title string) (time.Time, string, bool) {
	raw := reDate.FindString(title)
	if raw == "" {
		return time.Time{}, "", false
	}
	d, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return time.Time{}, "", false
	}
	return d, raw, true
}
