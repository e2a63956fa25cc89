// ABOUTME: Query parameter model for upstream text listings
// ABOUTME: Language enum parsing plus page/limit defaulting and capping

package upstream

import (
	"errors"
	"strconv"
	"strings"
)

// Language is the upstream's text language enum.
type Language string

const (
	LanguageUzbek   Language = "UZBEK"
	LanguageRussian Language = "RUSSIAN"
	LanguageEnglish Language = "ENGLISH"
	LanguageKrill   Language = "KRILL"
)

// Languages lists every language the upstream accepts, in display order.
var Languages = []Language{LanguageUzbek, LanguageRussian, LanguageEnglish, LanguageKrill}

// ErrInvalidLanguage is returned by ParseLanguage for values outside the enum.
var ErrInvalidLanguage = errors.New("invalid language")

const (
	// DefaultPage is used when the page parameter is missing or not a positive integer.
	DefaultPage = 1
	// DefaultLimit is used when the limit parameter is missing or not a positive integer.
	DefaultLimit = 20
	// PublicLimitCap bounds the limit on the unauthenticated listing.
	PublicLimitCap = 100
)

// ParseLanguage maps a query value onto the enum, ignoring case and
// surrounding whitespace. An empty value yields "" and no error.
func ParseLanguage(raw string) (Language, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	for _, l := range Languages {
		if string(l) == raw {
			return l, nil
		}
	}
	return "", ErrInvalidLanguage
}

// TextQuery holds the normalized listing parameters forwarded upstream.
type TextQuery struct {
	Page     int
	Limit    int
	Language Language
}

// ParseTextQuery normalizes raw page/limit/language values. A limitCap of
// zero leaves the limit unbounded.
func ParseTextQuery(page, limit, language string, limitCap int) (TextQuery, error) {
	lang, err := ParseLanguage(language)
	if err != nil {
		return TextQuery{}, err
	}

	q := TextQuery{
		Page:     positiveOr(page, DefaultPage),
		Limit:    positiveOr(limit, DefaultLimit),
		Language: lang,
	}
	if limitCap > 0 && q.Limit > limitCap {
		q.Limit = limitCap
	}
	return q, nil
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
