// Package paging slices a filtered, sorted list into fixed-size pages.
// It is deliberately free of transport types so keyboards can be built
// from its output and the boundary rules tested in isolation.
package paging

// PageSize is the number of rows per listing page.
const PageSize = 10

// Page returns the items of the requested page and the index actually
// used. If the requested page starts beyond the end of the list, the
// index is decremented until a non-empty page exists or it reaches 0.
// This absorbs the list shrinking between renders.
func Page[T any](items []T, pageIndex, pageSize int) ([]T, int) {
	if pageSize <= 0 || len(items) == 0 {
		return nil, 0
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	// Clamp arithmetically: page indices come from callback tokens and
	// can be arbitrarily large.
	maxIndex := (len(items) - 1) / pageSize
	if pageIndex > maxIndex {
		pageIndex = maxIndex
	}
	start := pageIndex * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], pageIndex
}

// HasPrev reports whether a "previous page" control should appear.
func HasPrev(pageIndex int) bool {
	return pageIndex > 0
}

// HasNext reports whether a "next page" control should appear.
func HasNext(pageIndex, pageSize, total int) bool {
	return (pageIndex+1)*pageSize < total
}
