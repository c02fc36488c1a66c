package service

import "strconv"

// badgeCap is the largest count shown verbatim on a badge.
const badgeCap = 99

// FormatBadge renders a counter for a badge: 0-99 as is, anything larger as "99+".
func FormatBadge(n int) string {
	if n < 0 {
		n = 0
	}
	if n > badgeCap {
		return strconv.Itoa(badgeCap) + "+"
	}
	return strconv.Itoa(n)
}
