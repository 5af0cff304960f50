package util

import "time"

var kst = time.FixedZone("KST", 9*60*60)

// FormatKST formats t in Korea Standard Time. Zero times render as "-".
func FormatKST(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(kst).Format(layout)
}
