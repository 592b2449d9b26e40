package utils

import (
	"fmt"
	"regexp"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func StripANSI(input string) string {
	return ansiRE.ReplaceAllString(input, "")
}

func GetMaxWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		if n := len([]rune(StripANSI(line))); n > maxWidth {
			maxWidth = n
		}
	}
	return maxWidth
}

// HumanSize renders a byte count with a binary unit ("1.5 MiB").
func HumanSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
