package utils

import (
	"bytes"
	"unicode/utf8"
)

// utf8ByteOrderMark is stripped from decoded text so fenced blocks start with real content.
var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Invalid UTF-8 and NUL bytes both count as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}

// DecodeText returns data as a string when it is valid text.
// The second result is false for binary or non-UTF-8 content.
func DecodeText(data []byte) (string, bool) {
	if IsBinary(data) {
		return "", false
	}
	return string(bytes.TrimPrefix(data, utf8ByteOrderMark)), true
}
