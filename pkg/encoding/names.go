// Package encoding provides text helpers for the packed name blob of a compiled model.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeName converts raw name bytes to a UTF-8 string.
// Bytes that are not valid UTF-8 are treated as Windows-1252, which is what
// older model compilers emit for non-ASCII names.
func DecodeName(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "?")
	}
	return string(result)
}

// NameAt returns the null-terminated name starting at adr in blob.
// An address outside the blob yields an empty string.
func NameAt(blob []byte, adr int) string {
	if adr < 0 || adr >= len(blob) {
		return ""
	}
	data := blob[adr:]
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return DecodeName(data)
}

// SplitNames splits a blob into its null-terminated names, in order.
// A trailing terminator does not produce an extra empty name.
func SplitNames(blob []byte) []string {
	blob = TrimNullBytes(blob)
	if len(blob) == 0 {
		return nil
	}
	parts := bytes.Split(blob, []byte{0})
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = DecodeName(p)
	}
	return names
}

// JoinNames packs names into a blob and returns each name's address.
func JoinNames(names []string) (blob []byte, adr []int32) {
	adr = make([]int32, len(names))
	for i, n := range names {
		adr[i] = int32(len(blob))
		blob = append(blob, n...)
		blob = append(blob, 0)
	}
	return blob, adr
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}
