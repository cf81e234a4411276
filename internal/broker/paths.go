package broker

import "golang.org/x/text/unicode/norm"

// NormalizePath returns the canonical form of a store path.
//
// Paths are NFC-normalized so that visually identical keys entered with
// different Unicode compositions address the same slot. Every backend
// normalizes on entry; callers may pass either form.
func NormalizePath(path string) string {
	return norm.NFC.String(path)
}
