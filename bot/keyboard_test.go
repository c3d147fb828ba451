package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"logibot/token"
	"logibot/truffe"
)

func sampleReservations(n int) []truffe.Reservation {
	reservations := make([]truffe.Reservation, n)
	for i := range reservations {
		reservations[i] = truffe.Reservation{
			PK:             i + 1,
			AskingUnitName: fmt.Sprintf("Unit %d", i+1),
			State:          truffe.StateOnline,
		}
	}
	return reservations
}

func TestBuildReservationsMarkupLastPage(t *testing.T) {
	// 25 reservations, page index 2: items 21-25, prev present, next absent.
	markup, page := buildReservationsMarkup(sampleReservations(25), view{Filter: token.FilterDefault, Page: 2})
	if page != 2 {
		t.Fatalf("page = %d, want 2", page)
	}

	rows := markup.InlineKeyboard
	if len(rows) != 6 { // 5 reservations + nav row
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if rows[0][0].Text != "Unit 21" {
		t.Errorf("first row = %q, want Unit 21", rows[0][0].Text)
	}
	if rows[0][0].Data != "21" {
		t.Errorf("first row token = %q", rows[0][0].Data)
	}

	nav := rows[len(rows)-1]
	if len(nav) != 2 { // prev + toggle, no next
		t.Fatalf("nav row has %d buttons, want 2", len(nav))
	}
	if nav[0].Data != "page_def_1" {
		t.Errorf("prev token = %q, want page_def_1", nav[0].Data)
	}
	if nav[1].Data != "page_all_0" {
		t.Errorf("toggle token = %q, want page_all_0", nav[1].Data)
	}
}

func TestBuildReservationsMarkupFirstPage(t *testing.T) {
	markup, page := buildReservationsMarkup(sampleReservations(25), view{Filter: token.FilterAll, Page: 0})
	if page != 0 {
		t.Fatalf("page = %d, want 0", page)
	}

	nav := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	if len(nav) != 2 { // toggle + next, no prev
		t.Fatalf("nav row has %d buttons, want 2", len(nav))
	}
	if nav[0].Data != "page_def_0" {
		t.Errorf("toggle token = %q, want page_def_0", nav[0].Data)
	}
	if nav[1].Data != "page_all_1" {
		t.Errorf("next token = %q, want page_all_1", nav[1].Data)
	}
}

func TestBuildReservationsMarkupClampsShrunkList(t *testing.T) {
	// A render asked for page 3 of a list that shrank to 12 items.
	markup, page := buildReservationsMarkup(sampleReservations(12), view{Filter: token.FilterDefault, Page: 3})
	if page != 1 {
		t.Fatalf("page = %d, want 1", page)
	}
	if got := len(markup.InlineKeyboard); got != 3 { // 2 reservations + nav
		t.Errorf("got %d rows, want 3", got)
	}
}

func TestJoinKeyboardTokens(t *testing.T) {
	markup := joinKeyboard(42)
	rows := markup.InlineKeyboard
	if len(rows) != 5 {
		t.Fatalf("got %d tier rows, want 5", len(rows))
	}
	// Highest tier first, lowest (Externe) last.
	if rows[0][0].Data != "ask_4_42" {
		t.Errorf("first row token = %q, want ask_4_42", rows[0][0].Data)
	}
	if rows[4][0].Data != "ask_0_42" {
		t.Errorf("last row token = %q, want ask_0_42", rows[4][0].Data)
	}
	for _, row := range rows {
		if _, err := token.Decode(row[0].Data); err != nil {
			t.Errorf("token %q does not decode: %v", row[0].Data, err)
		}
	}
}

func TestFormatReservationEscapesMarkdown(t *testing.T) {
	res := truffe.Reservation{
		PK:             1,
		Title:          "Tables (x10)",
		AskingUnitName: "CdD Jap'annecy",
		State:          truffe.StateOnline,
		StartDate:      time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC),
		Reason:         "event_with_underscores",
	}
	text := formatReservation(res)
	for _, want := range []string{`Tables \(x10\)`, `02\.05\.2024`, `event\_with\_underscores`} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted text missing %q:\n%s", want, text)
		}
	}
}
