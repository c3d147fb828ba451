package bot

import (
	"fmt"
	"strings"

	"logibot/accred"
	"logibot/paging"
	"logibot/token"
	"logibot/truffe"

	"gopkg.in/telebot.v3"
)

func escapeMarkdownV2(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// view is the listing state a render was produced from. It travels
// inside the callback tokens so any press can rebuild the exact page
// without server-side session state.
type view struct {
	Filter token.Filter
	Page   int
}

func defaultView() view {
	return view{Filter: token.FilterDefault, Page: 0}
}

func statesFor(filter token.Filter) []truffe.State {
	if filter == token.FilterAll {
		return truffe.ExtendedStates
	}
	return truffe.DefaultStates
}

func (bot *Bot) reservationsMarkup(v view) (*telebot.ReplyMarkup, int, error) {
	reservations, err := bot.Cache.InStates(statesFor(v.Filter))
	if err != nil {
		return nil, 0, err
	}
	markup, page := buildReservationsMarkup(reservations, v)
	return markup, page, nil
}

// buildReservationsMarkup renders one button per reservation of the
// requested page plus the navigation row. The returned page may be
// lower than requested when the list shrank.
func buildReservationsMarkup(reservations []truffe.Reservation, v view) (*telebot.ReplyMarkup, int) {
	pageItems, page := paging.Page(reservations, v.Page, paging.PageSize)

	var rows [][]telebot.InlineButton
	for _, res := range pageItems {
		rows = append(rows, []telebot.InlineButton{{
			Text: res.AskingUnitName,
			Data: token.OpenReservation{PK: res.PK}.Encode(),
		}})
	}

	var nav []telebot.InlineButton
	if paging.HasPrev(page) {
		nav = append(nav, telebot.InlineButton{
			Text: "⬅️",
			Data: token.PageTo{Filter: v.Filter, Page: page - 1}.Encode(),
		})
	}
	nav = append(nav, toggleFilterButton(v.Filter))
	if paging.HasNext(page, paging.PageSize, len(reservations)) {
		nav = append(nav, telebot.InlineButton{
			Text: "➡️",
			Data: token.PageTo{Filter: v.Filter, Page: page + 1}.Encode(),
		})
	}
	rows = append(rows, nav)

	return &telebot.ReplyMarkup{InlineKeyboard: rows}, page
}

func toggleFilterButton(filter token.Filter) telebot.InlineButton {
	if filter == token.FilterAll {
		return telebot.InlineButton{
			Text: "Vue par défaut 📋",
			Data: token.PageTo{Filter: token.FilterDefault, Page: 0}.Encode(),
		}
	}
	return telebot.InlineButton{
		Text: "Tout afficher 📋",
		Data: token.PageTo{Filter: token.FilterAll, Page: 0}.Encode(),
	}
}

// reservationDetailMarkup links the agreement document and the way back
// to the listing.
func reservationDetailMarkup(res truffe.Reservation) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{
		{
			{Text: "Convention 📄", Data: token.Agreement{PK: res.PK}.Encode()},
			{Text: "Convention (lien)", URL: res.AgreementURL},
		},
		{
			{Text: "⬅️", Data: token.ListReservations{Filter: token.FilterDefault, Page: 0}.Encode()},
			{Text: "🗑", Data: token.DeleteMessage{}.Encode()},
		},
	}}
}

// joinKeyboard offers every tier, lowest last so honest externals find
// their button where /join tells them to look.
func joinKeyboard(requesterID int64) *telebot.ReplyMarkup {
	tiers := accred.All()
	rows := make([][]telebot.InlineButton, 0, len(tiers))
	for i := len(tiers) - 1; i >= 0; i-- {
		tier := tiers[i]
		rows = append(rows, []telebot.InlineButton{{
			Text: tier.String(),
			Data: token.AskTier{Tier: int(tier), RequesterID: requesterID}.Encode(),
		}})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

// approvalKeyboard is the card sent to each validator.
func approvalKeyboard(tier accred.Tier, requesterID int64) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{{
		{Text: "✅ Approuver", Data: token.ApproveTier{Tier: int(tier), RequesterID: requesterID}.Encode()},
		{Text: "❌ Refuser", Data: token.DenyTier{Tier: int(tier), RequesterID: requesterID}.Encode()},
	}}}
}

// formatReservation renders the detail view in MarkdownV2.
func formatReservation(res truffe.Reservation) string {
	const dateLayout = "02.01.2006 15:04"

	var b strings.Builder
	fmt.Fprintf(&b, "Réservation %s\n\n", escapeMarkdownV2(res.State.Label()))
	b.WriteString("*Informations pratiques*\n")
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(res.Title))
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(res.AskingUnitName))
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(res.ContactPhone))
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(res.ContactTelegram))
	fmt.Fprintf(&b, "Emprunt: %s\n", escapeMarkdownV2(res.StartDate.Format(dateLayout)))
	fmt.Fprintf(&b, "Rendu: %s\n", escapeMarkdownV2(res.EndDate.Format(dateLayout)))
	if res.Reason != "" {
		fmt.Fprintf(&b, "\n*Commentaire entité*\n%s\n", escapeMarkdownV2(res.Reason))
	}
	if res.Remarks != "" {
		fmt.Fprintf(&b, "\n*Commentaire respo log*\n%s\n", escapeMarkdownV2(res.Remarks))
	}
	return b.String()
}
