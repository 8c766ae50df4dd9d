package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
}

func TestGetContextLines(t *testing.T) {
	src := "var a = 1;\nvar b = 2;\nprint a +;\nprint b;\n"

	out := GetContextLines(src, 3)
	expected := "       1 | var a = 1;\n" +
		"       2 | var b = 2;\n" +
		"  >    3 | print a +;\n"
	assert.Equal(t, expected, out)
}

func TestGetContextLinesMarksWholeLine(t *testing.T) {
	out := GetContextLines("var a = 1; a + 1 = 2; print \"after\";", 1)
	assert.Equal(t, "  >    1 | var a = 1; a + 1 = 2; print \"after\";\n", out)
	assert.NotContains(t, out, "^")
}

func TestGetContextLinesOutOfRange(t *testing.T) {
	assert.Equal(t, "", GetContextLines("print 1;", 0))
	assert.Equal(t, "", GetContextLines("print 1;", 2))
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in     float64
		expect string
	}{
		{1, "1"},
		{2.5, "2.5"},
		{-3, "-3"},
		{0.1 + 0.2, "0.30000000000000004"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, FormatNumber(c.in))
	}
}
