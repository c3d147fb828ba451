package bot

import (
	"testing"
	"time"

	"logibot/token"
	"logibot/truffe"
)

func TestParsePDFArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want pdfQuery
	}{
		{"no args", nil, pdfQuery{filter: token.FilterDefault}},
		{"all", []string{"all"}, pdfQuery{filter: token.FilterAll}},
		{"am", []string{"am"}, pdfQuery{filter: token.FilterDefault, half: "am"}},
		{"weekday french", []string{"lundi"}, pdfQuery{filter: token.FilterDefault, weekday: time.Monday, hasWeekday: true}},
		{"weekday short english", []string{"th"}, pdfQuery{filter: token.FilterDefault, weekday: time.Thursday, hasWeekday: true}},
		{"old", []string{"old"}, pdfQuery{filter: token.FilterDefault, includeOld: true}},
		{"combined any order", []string{"pm", "all", "ve", "old"}, pdfQuery{
			filter: token.FilterAll, half: "pm", weekday: time.Friday, hasWeekday: true, includeOld: true}},
		{"case insensitive", []string{"AM", "Lundi"}, pdfQuery{
			filter: token.FilterDefault, half: "am", weekday: time.Monday, hasWeekday: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePDFArgs(tc.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("parsePDFArgs(%v) = %+v, want %+v", tc.args, got, tc.want)
			}
		})
	}

	if _, err := parsePDFArgs([]string{"belier"}); err == nil {
		t.Error("unknown argument accepted")
	}
}

func TestFilterForPDF(t *testing.T) {
	now := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC) // a Wednesday

	monMorning := truffe.Reservation{PK: 1,
		StartDate: time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)}
	monAfternoon := truffe.Reservation{PK: 2,
		StartDate: time.Date(2024, 5, 13, 15, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 14, 15, 0, 0, 0, time.UTC)}
	friMorning := truffe.Reservation{PK: 3,
		StartDate: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC)}
	ended := truffe.Reservation{PK: 4,
		StartDate: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}

	all := []truffe.Reservation{monMorning, monAfternoon, friMorning, ended}

	pks := func(reservations []truffe.Reservation) []int {
		out := make([]int, len(reservations))
		for i, res := range reservations {
			out[i] = res.PK
		}
		return out
	}

	cases := []struct {
		name  string
		query pdfQuery
		want  []int
	}{
		{"default drops ended", pdfQuery{}, []int{1, 2, 3}},
		{"old keeps ended", pdfQuery{includeOld: true}, []int{1, 2, 3, 4}},
		{"am only", pdfQuery{half: "am"}, []int{1, 3}},
		{"pm only", pdfQuery{half: "pm"}, []int{2}},
		{"monday only", pdfQuery{weekday: time.Monday, hasWeekday: true}, []int{1, 2}},
		{"friday morning", pdfQuery{half: "am", weekday: time.Friday, hasWeekday: true}, []int{3}},
		{"no match", pdfQuery{half: "pm", weekday: time.Friday, hasWeekday: true}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pks(filterForPDF(all, tc.query, now))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestParseWeekdayAliases(t *testing.T) {
	cases := map[string]time.Weekday{
		"lu": time.Monday, "mardi": time.Tuesday, "we": time.Wednesday,
		"jeudi": time.Thursday, "fr": time.Friday, "samedi": time.Saturday,
		"su": time.Sunday,
	}
	for arg, want := range cases {
		got, ok := parseWeekday(arg)
		if !ok || got != want {
			t.Errorf("parseWeekday(%q) = %v, %v", arg, got, ok)
		}
	}
	if _, ok := parseWeekday("noday"); ok {
		t.Error("parseWeekday accepted junk")
	}
}
