package paging

import (
	"math"
	"testing"
)

func intRange(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPage(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		index     int
		size      int
		wantLen   int
		wantIndex int
		wantFirst int
	}{
		{"first page", 25, 0, 10, 10, 0, 1},
		{"middle page", 25, 1, 10, 10, 1, 11},
		{"last partial page", 25, 2, 10, 5, 2, 21},
		{"exact boundary", 20, 1, 10, 10, 1, 11},
		{"index past end clamps down", 25, 7, 10, 5, 2, 21},
		{"index past end on exact multiple", 20, 2, 10, 10, 1, 11},
		{"negative index clamps to zero", 25, -3, 10, 10, 0, 1},
		{"single short page", 3, 0, 10, 3, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, index := Page(intRange(tc.total), tc.index, tc.size)
			if len(items) != tc.wantLen {
				t.Errorf("len = %d, want %d", len(items), tc.wantLen)
			}
			if index != tc.wantIndex {
				t.Errorf("index = %d, want %d", index, tc.wantIndex)
			}
			if tc.wantLen > 0 && items[0] != tc.wantFirst {
				t.Errorf("first item = %d, want %d", items[0], tc.wantFirst)
			}
		})
	}
}

func TestPageHostileIndices(t *testing.T) {
	// Page indices arrive in callback tokens and can be any int64.
	for _, index := range []int{math.MaxInt, math.MaxInt - 1, 1 << 60, 100000000000000000} {
		items, clamped := Page(intRange(25), index, 10)
		if len(items) != 5 || clamped != 2 {
			t.Fatalf("index %d: got %d items at page %d, want 5 at 2", index, len(items), clamped)
		}
	}
	if items, clamped := Page(intRange(3), math.MaxInt, 10); len(items) != 3 || clamped != 0 {
		t.Fatalf("single page: got %d items at page %d", len(items), clamped)
	}
}

func TestPageEmptyAndDegenerate(t *testing.T) {
	if items, index := Page([]int{}, 3, 10); len(items) != 0 || index != 0 {
		t.Errorf("empty list: got %v, %d", items, index)
	}
	if items, index := Page(intRange(5), 0, 0); len(items) != 0 || index != 0 {
		t.Errorf("zero page size: got %v, %d", items, index)
	}
}

func TestPageNeverEmptyWhenListIsNot(t *testing.T) {
	for total := 1; total <= 35; total++ {
		for index := 0; index < 6; index++ {
			items, clamped := Page(intRange(total), index, PageSize)
			if len(items) == 0 {
				t.Fatalf("total %d index %d: empty page", total, index)
			}
			maxIndex := (total - 1) / PageSize
			if clamped < 0 || clamped > maxIndex {
				t.Fatalf("total %d index %d: clamped to %d, max %d", total, index, clamped, maxIndex)
			}
		}
	}
}

func TestNavigationControls(t *testing.T) {
	// 25 items, page size 10: pages 0, 1, 2.
	if HasPrev(0) {
		t.Error("prev on first page")
	}
	if !HasPrev(2) {
		t.Error("no prev on last page")
	}
	if !HasNext(0, 10, 25) {
		t.Error("no next on first page")
	}
	if !HasNext(1, 10, 25) {
		t.Error("no next on middle page")
	}
	if HasNext(2, 10, 25) {
		t.Error("next on last page")
	}
	if HasNext(1, 10, 20) {
		t.Error("next when the last page is exactly full")
	}
}
