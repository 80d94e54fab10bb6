package scantoken

import (
	"encoding/json"
	"strings"
)

// Kind tags the parsed token variant.
type Kind int

const (
	// KindRaw means the input is an opaque code (typically a branch QR).
	KindRaw Kind = iota
	// KindStructured means the input decoded as a JSON payload.
	KindStructured
)

// Token is the result of parsing a scanned payload. Exactly one variant is
// populated: Raw for KindRaw, the Code/ID/BranchID fields for
// KindStructured.
type Token struct {
	Kind Kind

	Raw string

	Code     string
	ID       string
	BranchID string
}

type structuredPayload struct {
	Code     string `json:"code"`
	ID       string `json:"id"`
	BranchID string `json:"branchId"`
}

// Parse decodes a scanned payload. It is total: structured decoding is
// attempted first, and any failure falls back to treating the whole input
// as a raw opaque code. It never returns an error.
func Parse(input string) Token {
	trimmed := strings.TrimSpace(input)

	var payload structuredPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		if payload.Code != "" || payload.ID != "" || payload.BranchID != "" {
			return Token{
				Kind:     KindStructured,
				Code:     payload.Code,
				ID:       payload.ID,
				BranchID: payload.BranchID,
			}
		}
	}

	return Token{Kind: KindRaw, Raw: trimmed}
}
