package bot

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"logibot/token"
	"logibot/truffe"

	"gopkg.in/telebot.v3"
)

const pdfUsage = "Usage: /pdf [all] [am|pm] [jour] [old]\n" +
	"Exemples: /pdf am lundi — /pdf all old"

// Reservations starting before this hour count as morning.
const middayHour = 13

// pdfQuery is the parsed argument set of /pdf. Arguments are
// order-independent.
type pdfQuery struct {
	filter     token.Filter
	half       string // "", "am" or "pm"
	weekday    time.Weekday
	hasWeekday bool
	includeOld bool
}

func parsePDFArgs(args []string) (pdfQuery, error) {
	query := pdfQuery{filter: token.FilterDefault}
	for _, arg := range args {
		arg = strings.ToLower(arg)
		switch {
		case arg == "all":
			query.filter = token.FilterAll
		case arg == "am" || arg == "pm":
			query.half = arg
		case arg == "old":
			query.includeOld = true
		default:
			weekday, ok := parseWeekday(arg)
			if !ok {
				return pdfQuery{}, fmt.Errorf("unknown argument %q", arg)
			}
			query.weekday = weekday
			query.hasWeekday = true
		}
	}
	return query, nil
}

// filterForPDF applies the /pdf argument filters on an already
// state-filtered reservation list. Reservations that ended before now
// are dropped unless "old" was asked for.
func filterForPDF(reservations []truffe.Reservation, query pdfQuery, now time.Time) []truffe.Reservation {
	var matches []truffe.Reservation
	for _, res := range reservations {
		if !query.includeOld && res.EndDate.Before(now) {
			continue
		}
		if query.half == "am" && res.StartDate.Hour() >= middayHour {
			continue
		}
		if query.half == "pm" && res.StartDate.Hour() < middayHour {
			continue
		}
		if query.hasWeekday && res.StartDate.Weekday() != query.weekday {
			continue
		}
		matches = append(matches, res)
	}
	return matches
}

func (bot *Bot) handlePDF(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/pdf"]) {
		return nil
	}

	query, err := parsePDFArgs(c.Args())
	if err != nil {
		return c.Send(pdfUsage)
	}

	reservations, err := bot.Cache.InStates(statesFor(query.filter))
	if err != nil {
		log.Printf("list reservations for /pdf: %v", err)
		return c.Send("Impossible de récupérer les réservations pour le moment. 😢")
	}

	matches := filterForPDF(reservations, query, time.Now())
	if len(matches) == 0 {
		return c.Send("Aucune réservation ne correspond à ces critères.")
	}

	for _, res := range matches {
		pdf, err := bot.Client.AgreementPDF(res.PK)
		if err != nil {
			log.Printf("fetch agreement %d: %v", res.PK, err)
			c.Send(fmt.Sprintf("Convention de %s indisponible. 😢", res.AskingUnitName))
			continue
		}
		document := &telebot.Document{
			File:     telebot.FromReader(bytes.NewReader(pdf)),
			FileName: fmt.Sprintf("convention_%d.pdf", res.PK),
			Caption:  res.AskingUnitName,
		}
		if err := c.Send(document); err != nil {
			log.Printf("send agreement %d: %v", res.PK, err)
		}
	}
	return nil
}
