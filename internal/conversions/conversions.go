// Package conversions is a set of unsafe conversions from one type to another,
// used to avoid copies when moving record buffers between []byte and string
// views. The caller must not mutate a []byte that has been viewed as a string.
package conversions

import "unsafe"

// ByteSlice2String converts bs to a string without a copy.
func ByteSlice2String(bs []byte) string {
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(&bs[0], len(bs))
}

// String2ByteSlice converts s to a []byte without a copy. The result must be
// treated as read-only.
func String2ByteSlice(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
