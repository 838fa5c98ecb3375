package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Parquery/mapry/gen"
)

func TestReindent(t *testing.T) {
	t.Parallel()

	text := "" +
		"    test me:\n" +
		"        again\n" +
		"            and again\n"

	got := gen.Reindent(text, 0, "|")
	want := "" +
		"test me:\n" +
		"|again\n" +
		"||and again\n"

	assert.Equal(t, want, got)
}

func TestReindent_Level(t *testing.T) {
	t.Parallel()

	text := "" +
		"    test me:\n" +
		"        again\n"

	got := gen.Reindent(text, 1, "|")
	want := "" +
		"|test me:\n" +
		"||again\n"

	assert.Equal(t, want, got)
}
