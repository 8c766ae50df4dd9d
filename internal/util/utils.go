package util

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a float the way values print: integral values have
// no fractional part, infinities and NaN use inf, -inf and nan.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SplitLines splits src on '\n'; a trailing newline does not produce an
// extra empty line.
func SplitLines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.Split(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// GetContextLines renders up to two lines before errorLine plus the error line
// itself, with the error line marked. Lines are 1-based. Reports carry no
// column, so nothing within the line is singled out.
func GetContextLines(src string, errorLine int) string {
	lines := SplitLines(src)
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := strings.TrimRight(lines[i-1], "\r")

		marker := "    "
		if i == errorLine {
			marker = "  > "
		}
		result.WriteString(fmt.Sprintf("%s %3d | %s\n", marker, i, lineContent))
	}

	return result.String()
}
