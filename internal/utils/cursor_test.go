package utils_test

import (
	"testing"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/utils"
)

func TestLeadCursorRoundTrip(t *testing.T) {
	at := time.Now().UTC().Truncate(time.Millisecond)

	encoded, err := utils.EncodeLeadCursor(at, "lead-1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	c, err := utils.DecodeLeadCursor(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !c.CreatedAt.Equal(at) || c.ID != "lead-1" {
		t.Fatalf("round trip mismatch: %+v", c)
	}
}

func TestDecodeLeadCursor_Rejects(t *testing.T) {
	for _, cursor := range []string{
		"",
		"!!!",
		"bm90IGpzb24",          // "not json"
		"eyJpZCI6ImxlYWQtMSJ9", // valid json, zero createdAt
	} {
		if _, err := utils.DecodeLeadCursor(cursor); err == nil {
			t.Fatalf("%q: expected an error", cursor)
		}
	}
}
