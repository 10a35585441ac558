package render

import (
	"fmt"
	"math"
)

// SecondsDisplay renders a compact duration such as "42.00 seconds",
// "2.50 minutes" or "1.25 hours".
func SecondsDisplay(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2f seconds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%.2f minutes", minutes)
	}
	return fmt.Sprintf("%.2f hours", minutes/60)
}

// DetailedTime renders a duration as "1 hrs 2 mns 3 scs". Values under a
// minute keep two decimals.
func DetailedTime(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2f scs", seconds)
	}
	minutes := int64(math.Floor(seconds / 60))
	rest := int64(math.Floor(math.Mod(seconds, 60)))
	if minutes < 60 {
		return fmt.Sprintf("%d mns %d scs", minutes, rest)
	}
	return fmt.Sprintf("%d hrs %d mns %d scs", minutes/60, minutes%60, rest)
}
