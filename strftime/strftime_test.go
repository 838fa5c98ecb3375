package strftime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/strftime"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens, err := strftime.Tokenize("%Y-%m-%d")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, []strftime.Token{
		{Kind: strftime.Directive, Content: "%Y"},
		{Kind: strftime.Text, Content: "-"},
		{Kind: strftime.Directive, Content: "%m"},
		{Kind: strftime.Text, Content: "-"},
		{Kind: strftime.Directive, Content: "%d"},
	}, tokens[0])
}

func TestTokenize_MultiLine(t *testing.T) {
	t.Parallel()

	tokens, err := strftime.Tokenize("%Y\n%m")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, []strftime.Token{{Kind: strftime.Directive, Content: "%Y"}}, tokens[0])
	assert.Equal(t, []strftime.Token{{Kind: strftime.Directive, Content: "%m"}}, tokens[1])
}

func TestTokenize_UnsupportedDirective(t *testing.T) {
	t.Parallel()

	_, err := strftime.Tokenize("%Y-%j")

	var unsupported *strftime.UnsupportedDirectiveError

	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "%j", unsupported.Directive)
}

func TestTokenize_LiteralPercent(t *testing.T) {
	t.Parallel()

	tokens, err := strftime.Tokenize("100%%")
	require.NoError(t, err)

	assert.Equal(t, []strftime.Token{
		{Kind: strftime.Text, Content: "100"},
		{Kind: strftime.Directive, Content: "%%"},
	}, tokens[0])
}

func TestValidateDateTokens(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		format  string
		wantErr bool
	}{
		"valid date":          {"%Y-%m-%d", false},
		"empty":               {"", true},
		"time directive":      {"%Y-%H", true},
		"weekday and century": {"%A, %Y-%m-%d", false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tokens, err := strftime.Tokenize(tc.format)
			if err != nil {
				require.True(t, tc.wantErr)
				return
			}

			err = strftime.ValidateDateTokens(tokens)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeTokens(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		format  string
		wantErr bool
	}{
		"valid time":     {"%H:%M:%S", false},
		"empty":          {"", true},
		"date directive": {"%H:%Y", true},
		"meridian":       {"%I:%M %p", false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tokens, err := strftime.Tokenize(tc.format)
			if err != nil {
				require.True(t, tc.wantErr)
				return
			}

			err = strftime.ValidateTimeTokens(tokens)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
