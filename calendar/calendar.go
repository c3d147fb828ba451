// Package calendar keeps the shared pickup/return calendar in sync with
// the reservation list. The refresh is a full replace: every event
// created earlier is deleted, then one event per grouped time slot is
// recreated.
package calendar

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"logibot/model"
	"logibot/truffe"

	"gorm.io/gorm"
)

const (
	// SlotDuration is the booked length of every created event.
	SlotDuration = 60 * time.Minute

	EventLocation = "Boutique de l'AGEPoly, sur l'Esplanade"
)

// Event is what gets created in the external calendar.
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// Gateway is the external calendar collaborator.
type Gateway interface {
	CreateEvent(event Event) (string, error)
	DeleteEvent(eventID string) error
}

// Manager owns the refresh cycle and the registry of created event ids.
type Manager struct {
	DB       *gorm.DB
	Gateway  Gateway
	Timezone string
}

func NewManager(db *gorm.DB, gateway Gateway, timezone string) *Manager {
	return &Manager{DB: db, Gateway: gateway, Timezone: timezone}
}

// Refresh replaces the whole calendar: deletes all previously created
// events, then creates one event per hour slot of pickups and returns.
func (m *Manager) Refresh(reservations []truffe.Reservation) error {
	if err := m.Clear(); err != nil {
		return err
	}

	events := groupSlots(reservations, true)
	events = append(events, groupSlots(reservations, false)...)

	for _, event := range events {
		event.Location = EventLocation
		event.Timezone = m.Timezone
		eventID, err := m.Gateway.CreateEvent(event)
		if err != nil {
			return fmt.Errorf("create event %q: %w", event.Title, err)
		}
		// Persist each id as soon as it exists so a failed refresh can
		// still be cleaned up by the next one.
		if err := m.DB.Create(&model.CalendarEvent{EventID: eventID}).Error; err != nil {
			return fmt.Errorf("record event id %s: %w", eventID, err)
		}
		log.Printf("calendar: event %q added", event.Title)
	}
	return nil
}

// Clear deletes every event this bot created and forgets its id.
func (m *Manager) Clear() error {
	var events []model.CalendarEvent
	if err := m.DB.Find(&events).Error; err != nil {
		return fmt.Errorf("load event ids: %w", err)
	}
	for _, event := range events {
		if err := m.Gateway.DeleteEvent(event.EventID); err != nil {
			return fmt.Errorf("delete event %s: %w", event.EventID, err)
		}
		if err := m.DB.Delete(&model.CalendarEvent{}, "event_id = ?", event.EventID).Error; err != nil {
			return fmt.Errorf("forget event id %s: %w", event.EventID, err)
		}
	}
	return nil
}

// groupSlots buckets reservations by the hour their pickup (or return)
// falls in and builds one event per bucket.
func groupSlots(reservations []truffe.Reservation, pickups bool) []Event {
	grouped := make(map[time.Time][]truffe.Reservation)
	for _, res := range reservations {
		date := res.EndDate
		if pickups {
			date = res.StartDate
		}
		slot := date.Truncate(time.Hour)
		grouped[slot] = append(grouped[slot], res)
	}

	slots := make([]time.Time, 0, len(grouped))
	for slot := range grouped {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	events := make([]Event, 0, len(slots))
	for _, slot := range slots {
		bucket := grouped[slot]
		kind := "Rendu"
		if pickups {
			kind = "Prêt"
		}
		plural := ""
		if len(bucket) > 1 {
			plural = "s"
		}

		var description strings.Builder
		for _, res := range bucket {
			description.WriteString(res.AskingUnitName + "\n")
			description.WriteString(res.AgreementURL + "\n")
			description.WriteString("\t" + res.ContactPhone + "\n")
			description.WriteString("\t" + res.ContactTelegram + "\n\n")
		}

		events = append(events, Event{
			Title:       fmt.Sprintf("%d %s%s", len(bucket), kind, plural),
			Description: description.String(),
			Start:       slot,
			End:         slot.Add(SlotDuration),
		})
	}
	return events
}
