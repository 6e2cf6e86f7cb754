package utils

import (
	"time"
)

const (
	// DateStampLayout formats the date part of output file names.
	DateStampLayout = "2006-01-02"
	// TimeStampLayout formats the optional time part of output file names.
	TimeStampLayout = "15-04-05"
	// HeaderTimestampLayout formats the generation time written into the snapshot header.
	HeaderTimestampLayout = "2006-01-02T15:04:05"
)

// FormatDateStamp returns the date part used in output file names.
func FormatDateStamp(value time.Time) string {
	return value.Format(DateStampLayout)
}

// FormatTimeStamp returns the time part used in output file names.
func FormatTimeStamp(value time.Time) string {
	return value.Format(TimeStampLayout)
}

// FormatHeaderTimestamp returns the local time with second precision for document headers.
func FormatHeaderTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(HeaderTimestampLayout)
}
