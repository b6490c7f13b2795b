package report

import (
	"strconv"
	"unicode/utf8"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func optBool(b *bool) string {
	if b == nil {
		return "-"
	}
	return yesNo(*b)
}

// formatDomainAge renders an age in days, or "unknown".
func formatDomainAge(days *int) string {
	if days == nil {
		return "unknown"
	}
	if *days == 1 {
		return "1 day"
	}
	return strconv.Itoa(*days) + " days"
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
