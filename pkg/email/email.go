// Package email normalizes filer addresses before they are handed to the
// mail service.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims addr and reports whether it parses as a bare address.
// Display-name forms ("Ana <ana@example.com>") are reduced to the address.
func Normalize(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return "", false
	}
	return parsed.Address, true
}

// Recipients normalizes addrs, dropping invalid entries and duplicates.
// Duplicates are detected case-insensitively; the first spelling is kept.
func Recipients(addrs ...string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		n, ok := Normalize(a)
		if !ok {
			continue
		}
		key := strings.ToLower(n)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
