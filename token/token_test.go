package token

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		raw  string
		want Action
	}{
		{"reservations_def_0", ListReservations{Filter: FilterDefault, Page: 0}},
		{"reservations_all_4", ListReservations{Filter: FilterAll, Page: 4}},
		{"page_def_2", PageTo{Filter: FilterDefault, Page: 2}},
		{"page_all_0", PageTo{Filter: FilterAll, Page: 0}},
		{"1337", OpenReservation{PK: 1337}},
		{"agreement_42", Agreement{PK: 42}},
		{"ask_2_123456789", AskTier{Tier: 2, RequesterID: 123456789}},
		{"ok_3_42", ApproveTier{Tier: 3, RequesterID: 42}},
		{"no_1_42", DenyTier{Tier: 1, RequesterID: 42}},
		{"delete_", DeleteMessage{}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Decode(tc.raw)
			if err != nil {
				t.Fatalf("Decode(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Decode(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
			if reenc := got.Encode(); reenc != tc.raw {
				t.Errorf("Encode(Decode(%q)) = %q", tc.raw, reenc)
			}
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"reservations",           // missing args
		"reservations_def",       // missing page
		"reservations_def_x",     // non-numeric page
		"reservations_def_-1",    // negative page
		"reservations_weird_0",   // unknown filter
		"page_def_1_extra",       // wrong arity
		"agreement_",             // missing pk
		"agreement_abc",          // non-numeric pk
		"ask_2",                  // missing requester
		"ok_x_42",                // non-numeric tier
		"no_1_notanid",           // non-numeric requester
		"delete",                 // missing trailing delimiter
		"delete_now",             // trailing junk
		"frobnicate_12",          // unknown action
		"-5",                     // negative bare id
		"+5",                     // signed bare id
		strings.Repeat("9", 30),  // bare id overflowing int64
		strings.Repeat("9", 65),  // over the payload ceiling
		"reservations_def_0_0_0", // arity explosion
	}
	for _, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("Decode(%q): err = %v, want ErrUnrecognized", raw, err)
		}
	}
}

func TestEncodedTokensFitPayload(t *testing.T) {
	// Telegram ids fit in int64; the widest realistic tokens stay under
	// the 64-byte transport limit.
	actions := []Action{
		ListReservations{Filter: FilterAll, Page: 99999},
		AskTier{Tier: 4, RequesterID: 9223372036854775807},
		ApproveTier{Tier: 4, RequesterID: 9223372036854775807},
		Agreement{PK: 2147483647},
	}
	for _, a := range actions {
		if enc := a.Encode(); len(enc) > MaxLen {
			t.Errorf("%#v encodes to %d bytes", a, len(enc))
		}
	}
}
