// Package truffe fetches equipment reservations from the Truffe
// logistics API and keeps a short-lived normalized snapshot of them.
package truffe

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// StalenessWindow is the maximum age of the cached snapshot before a
// fetch is attempted.
const StalenessWindow = 60 * time.Second

// ErrNotFound is returned when no reservation carries the requested key.
var ErrNotFound = errors.New("reservation not found")

// Fetcher supplies the raw reservation set. *Client implements it.
type Fetcher interface {
	FetchReservations() ([]Reservation, error)
}

// Cache memoizes the reservation set for StalenessWindow and serves
// normalized, defensively copied snapshots. The snapshot is immutable
// after write: concurrent refreshes may both hit the network and the
// last writer wins, which is fine because the result is re-derivable.
type Cache struct {
	fetcher Fetcher
	baseURL string
	loc     *time.Location
	now     func() time.Time

	mu        sync.Mutex
	snapshot  []Reservation
	fetchedAt time.Time
}

func NewCache(fetcher Fetcher, baseURL string, loc *time.Location) *Cache {
	return &Cache{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		loc:     loc,
		now:     time.Now,
	}
}

// Reservations returns the normalized reservation set, hitting the
// network only when the snapshot is absent or stale (or force is set).
// A refresh failure with a warm snapshot falls back to the last good
// data instead of surfacing the error; only a cold-cache failure does.
func (c *Cache) Reservations(force bool) ([]Reservation, error) {
	c.mu.Lock()
	snapshot, fetchedAt := c.snapshot, c.fetchedAt
	c.mu.Unlock()

	fresh := snapshot != nil && c.now().Sub(fetchedAt) < StalenessWindow
	if fresh && !force {
		return copyOf(snapshot), nil
	}

	fetched, err := c.fetcher.FetchReservations()
	if err != nil {
		if snapshot != nil {
			log.Printf("truffe: refresh failed, serving last snapshot: %v", err)
			return copyOf(snapshot), nil
		}
		return nil, fmt.Errorf("fetch reservations: %w", err)
	}

	normalized := c.normalize(fetched)

	c.mu.Lock()
	c.snapshot = normalized
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return copyOf(normalized), nil
}

// normalize converts dates to the display timezone, sorts by start date
// (stable, ascending) and derives the agreement document URL.
func (c *Cache) normalize(reservations []Reservation) []Reservation {
	normalized := make([]Reservation, len(reservations))
	copy(normalized, reservations)
	for i := range normalized {
		normalized[i].StartDate = normalized[i].StartDate.In(c.loc)
		normalized[i].EndDate = normalized[i].EndDate.In(c.loc)
		normalized[i].AgreementURL = fmt.Sprintf("%s/loanagreement/%d/pdf/", c.baseURL, normalized[i].PK)
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].StartDate.Before(normalized[j].StartDate)
	})
	return normalized
}

// InStates returns the reservations whose state is in the given set,
// preserving sort order.
func (c *Cache) InStates(states []State) ([]Reservation, error) {
	reservations, err := c.Reservations(false)
	if err != nil {
		return nil, err
	}
	wanted := make(map[State]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}
	filtered := reservations[:0]
	for _, res := range reservations {
		if wanted[res.State] {
			filtered = append(filtered, res)
		}
	}
	return filtered, nil
}

// ByPK returns the reservation with the given primary key.
func (c *Cache) ByPK(pk int) (Reservation, error) {
	reservations, err := c.Reservations(false)
	if err != nil {
		return Reservation{}, err
	}
	for _, res := range reservations {
		if res.PK == pk {
			return res, nil
		}
	}
	return Reservation{}, ErrNotFound
}

func copyOf(reservations []Reservation) []Reservation {
	out := make([]Reservation, len(reservations))
	copy(out, reservations)
	return out
}
