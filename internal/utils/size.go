package utils

import (
	"strconv"
	"strings"
)

var fileSizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string
// such as "512b", "1.5kb" or "10mb". Values below ten keep one decimal.
func FormatFileSize(byteCount int64) string {
	if byteCount <= 0 {
		return "0b"
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(fileSizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return strconv.FormatInt(byteCount, 10) + fileSizeUnits[0]
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0")
	return formatted + fileSizeUnits[unitIndex]
}
