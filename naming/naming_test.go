package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/naming"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want []string
	}{
		"single part":     {"some", []string{"some"}},
		"two parts":       {"some_split", []string{"some", "split"}},
		"capital leading":  {"Some_split", []string{"Some", "split"}},
		"capital both":     {"Some_Split", []string{"Some", "Split"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := naming.Split(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := naming.Split("")
	assert.ErrorIs(t, err, naming.ErrEmptyIdentifier)
}

func TestPlural(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want string
	}{
		"simple":               {"Hello", "Hellos"},
		"compound":              {"GoodDay", "GoodDays"},
		"trailing y":            {"Daisy", "Daisies"},
		"trailing x, preserves prefix": {"Bounding_box", "Bounding_boxes"},
		"preserves inner caps":  {"Some_URL", "Some_URLs"},
		"irregular":             {"Focus", "Foci"},
		"irregular lowercase":   {"criterion", "criteria"},
		"vowel+y":               {"Some_day", "Some_days"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := naming.Plural(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONPlural(t *testing.T) {
	t.Parallel()

	got, err := naming.JSONPlural("Some_URL_instances")
	require.NoError(t, err)
	assert.Equal(t, "some_url_instances", got)
}

func TestLowerCamel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want string
	}{
		"simple":            {"some_block", "someBlock"},
		"leading capital":    {"Some_block", "someBlock"},
		"preserves acronyms": {"Some_ID_URLs", "someIDURLs"},
		"leading acronym":    {"IDs_of_URLs", "idsOfURLs"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := naming.LowerCamel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUpperCamel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want string
	}{
		"simple":            {"Some_block", "SomeBlock"},
		"preserves acronyms": {"Some_ID_URLs", "SomeIDURLs"},
		"leading acronym":    {"IDs_of_URLs", "IDsOfURLs"},
		"preserves url case": {"Some_URL_class", "SomeURLClass"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := naming.UpperCamel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := naming.UpperCamel("lowercase")
	assert.ErrorIs(t, err, naming.ErrNotCapitalized)
}

func TestLowercaseJoin(t *testing.T) {
	t.Parallel()

	got, err := naming.LowercaseJoin("some_URL_property")
	require.NoError(t, err)
	assert.Equal(t, "some_url_property", got)

	got, err = naming.LowercaseJoin("URL_property")
	require.NoError(t, err)
	assert.Equal(t, "url_property", got)
}
