package gogen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry/strftime"
)

// strftimeToGo maps a supported strftime directive to its Go time.Layout
// equivalent (the reference-time "Mon Jan 2 15:04:05 MST 2006" scheme).
//
// Taken, like the original, from https://github.com/bdotdub/fuckinggodateformat.
var strftimeToGo = map[string]string{
	"%a": "Mon",
	"%A": "Monday",
	"%b": "Jan",
	"%B": "January",
	"%d": "02",
	"%e": "_2",
	"%m": "01",
	"%y": "06",
	"%Y": "2006",
	"%H": "15",
	"%I": "03",
	"%l": "3",
	"%M": "04",
	"%P": "pm",
	"%p": "PM",
	"%S": "05",
	"%z": "-0700",
	"%Z": "MST",
	"%%": "%",
}

// ConvertFormat translates a strftime-directive format string into the Go
// time.Layout equivalent, ported from mapry/go/timeformat.py.
func ConvertFormat(format string) (string, error) {
	tokenLines, err := strftime.Tokenize(format)
	if err != nil {
		return "", fmt.Errorf("gogen: converting format %q: %w", format, err)
	}

	var b strings.Builder

	for i, line := range tokenLines {
		if i > 0 {
			b.WriteByte('\n')
		}

		for _, tok := range line {
			if tok.Kind == strftime.Directive {
				layout, ok := strftimeToGo[tok.Content]
				if !ok {
					return "", fmt.Errorf("gogen: unhandled strftime directive in Go layout: %s", tok.Content)
				}

				b.WriteString(layout)
			} else {
				b.WriteString(tok.Content)
			}
		}
	}

	return b.String(), nil
}
