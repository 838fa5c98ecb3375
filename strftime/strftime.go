// Package strftime lexes and validates date/time format strings written
// as strftime directives, per §4.2. The supported directive set is
// closed: mapry can only promise a format parses identically across
// targets for the directives every target's time library can express.
//
// Ported from mapry/strftime.py (Parquery/mapry).
package strftime

import (
	"fmt"
	"regexp"
	"strings"
)

// TokenKind distinguishes a literal-text token from a directive token.
type TokenKind int

const (
	// Text marks a run of literal (non-directive) characters.
	Text TokenKind = iota
	// Directive marks a single strftime directive, e.g. "%Y".
	Directive
)

// Token is one lexed unit of a format string.
type Token struct {
	Kind    TokenKind
	Content string
}

// Supported is the closed set of strftime directives mapry understands.
// Unlike a C strftime implementation, mapry cannot support every
// directive since the format needs to be translated and re-parsed by a
// different time library per target language.
var Supported = map[string]bool{
	"%a": true, // abbreviated weekday name ("Sun")
	"%A": true, // full weekday name ("Sunday")
	"%b": true, // abbreviated month name ("Jan")
	"%B": true, // full month name ("January")
	"%d": true, // day of the month (01..31)
	"%e": true, // day of the month, blank-padded ( 1..31)
	"%m": true, // month of the year (01..12)
	"%y": true, // year without century (00..99)
	"%Y": true, // year with century
	"%H": true, // hour, 24-hour clock (00..23)
	"%I": true, // hour, 12-hour clock (01..12)
	"%l": true, // hour, 12-hour clock, no leading zero (1..12)
	"%M": true, // minute of the hour (00..59)
	"%P": true, // meridian indicator, lowercase ("am"/"pm")
	"%p": true, // meridian indicator, uppercase ("AM"/"PM")
	"%S": true, // second of the minute (00..60)
	"%z": true, // UTC offset
	"%Z": true, // zone name
	"%%": true, // literal "%"
}

// DateDirectives is the subset of Supported permitted in a date-only
// format: no hour/minute/second/meridian directives.
var DateDirectives = subset("%a", "%A", "%b", "%B", "%d", "%e", "%m", "%y", "%Y", "%z", "%Z", "%%")

// TimeDirectives is the subset of Supported permitted in a time-only
// format: no weekday/month/day/year directives.
var TimeDirectives = subset("%H", "%I", "%l", "%M", "%P", "%p", "%S", "%z", "%Z", "%%")

func subset(directives ...string) map[string]bool {
	m := make(map[string]bool, len(directives))
	for _, d := range directives {
		m[d] = true
	}

	return m
}

var lexRe = regexp.MustCompile(`%[a-zA-Z%]|[^%]+`)

// UnsupportedDirectiveError reports that a format string used a directive
// outside the Supported set.
type UnsupportedDirectiveError struct {
	Directive string
}

func (e *UnsupportedDirectiveError) Error() string {
	return fmt.Sprintf("unsupported directive(s): %s", e.Directive)
}

// LexError reports that a format string could not be lexed at all, e.g.
// a bare "%" not followed by a supported suffix character.
type LexError struct {
	Format string
	Offset int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("failed to lex format %q at offset %d", e.Format, e.Offset)
}

// Tokenize lexes format into per-line token sequences, splitting on "\n".
// It also validates that every directive found belongs to Supported,
// returning an *UnsupportedDirectiveError naming every offending
// directive (deduplicated, in first-seen order) if not.
func Tokenize(format string) ([][]Token, error) {
	lines := strings.Split(format, "\n")

	tokenLines := make([][]Token, 0, len(lines))

	var unsupported []string

	seen := map[string]bool{}

	for _, line := range lines {
		tokens, err := lexLine(line)
		if err != nil {
			return nil, err
		}

		for _, tok := range tokens {
			if tok.Kind == Directive && !Supported[tok.Content] && !seen[tok.Content] {
				seen[tok.Content] = true

				unsupported = append(unsupported, tok.Content)
			}
		}

		tokenLines = append(tokenLines, tokens)
	}

	if len(unsupported) > 0 {
		return nil, &UnsupportedDirectiveError{Directive: strings.Join(unsupported, ", ")}
	}

	return tokenLines, nil
}

func lexLine(line string) ([]Token, error) {
	var tokens []Token

	pos := 0

	for pos < len(line) {
		loc := lexRe.FindStringIndex(line[pos:])
		if loc == nil || loc[0] != 0 {
			return nil, &LexError{Format: line, Offset: pos}
		}

		match := line[pos+loc[0] : pos+loc[1]]

		if strings.HasPrefix(match, "%") {
			tokens = append(tokens, Token{Kind: Directive, Content: match})
		} else {
			tokens = append(tokens, Token{Kind: Text, Content: match})
		}

		pos += loc[1]
	}

	return tokens, nil
}

// ValidateDateTokens checks that tokenLines represents a valid date-only
// format: non-empty, and every directive drawn from DateDirectives.
func ValidateDateTokens(tokenLines [][]Token) error {
	return validateSubset(tokenLines, DateDirectives, "date")
}

// ValidateTimeTokens checks that tokenLines represents a valid time-only
// format: non-empty, and every directive drawn from TimeDirectives.
func ValidateTimeTokens(tokenLines [][]Token) error {
	return validateSubset(tokenLines, TimeDirectives, "time")
}

func validateSubset(tokenLines [][]Token, allowed map[string]bool, kind string) error {
	total := 0
	for _, line := range tokenLines {
		total += len(line)
	}

	if total == 0 {
		return fmt.Errorf("unexpected empty %s format", kind)
	}

	for _, line := range tokenLines {
		for _, tok := range line {
			if tok.Kind == Directive && !allowed[tok.Content] {
				return fmt.Errorf("unexpected directive %q in a %s format", tok.Content, kind)
			}
		}
	}

	return nil
}
