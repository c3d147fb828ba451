package bot

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"

	"logibot/accred"
	"logibot/token"
	"logibot/truffe"

	"gopkg.in/telebot.v3"
)

// handleCallback routes every inline button press. The external action
// family is tried before the team family; an unrecognized token and a
// recognized-but-forbidden one get the same response, so callers cannot
// probe which actions exist.
func (bot *Bot) handleCallback(c telebot.Context) error {
	defer c.Respond()

	action, err := token.Decode(strings.TrimSpace(c.Callback().Data))
	if err != nil {
		return bot.callbackFallback(c)
	}

	if bot.allows(c, accred.External) {
		if handled, err := bot.externalAction(c, action); handled {
			return err
		}
	}
	if bot.allows(c, accred.TeamMember) {
		if handled, err := bot.teamAction(c, action); handled {
			return err
		}
	}
	return bot.callbackFallback(c)
}

func (bot *Bot) allows(c telebot.Context, required accred.Tier) bool {
	decision, err := bot.Accred.HasPrivilege(c.Sender().ID, required)
	if err != nil {
		log.Printf("privilege check for user %d: %v", c.Sender().ID, err)
		return false
	}
	return decision == accred.Sufficient
}

func (bot *Bot) callbackFallback(c telebot.Context) error {
	text := "Cette fonctionnalité n'est pas implémentée ou tu n'as plus les droits pour utiliser ce menu.\n" +
		"Si tu penses que c'est une erreur, essaie d'acquérir de nouveaux droits avec /join puis contacte " +
		"nous si l'erreur persiste !"
	return c.Edit(text)
}

// --- External action family ---

func (bot *Bot) externalAction(c telebot.Context, action token.Action) (bool, error) {
	switch a := action.(type) {
	case token.AskTier:
		return true, bot.handleAskTier(c, a)
	case token.ApproveTier:
		return true, bot.handleApproveTier(c, a)
	case token.DenyTier:
		return true, bot.handleDenyTier(c, a)
	case token.DeleteMessage:
		return true, c.Delete()
	}
	return false, nil
}

func (bot *Bot) handleAskTier(c telebot.Context, a token.AskTier) error {
	tier, err := accred.FromValue(a.Tier)
	if err != nil {
		return bot.callbackFallback(c)
	}

	// Asking for the lowest tier needs no validation round-trip.
	if tier == accred.External {
		return c.Edit("Merci pour ton honnêteté 😉 En tant qu'externe tu peux faire de grandes " +
			"choses, jette un oeil à /help pour en savoir plus !")
	}

	validators, err := bot.Accred.UsersAtOrAbove(accred.ApprovalTier)
	if err != nil {
		log.Printf("enumerate validators: %v", err)
		return c.Edit("Une erreur est survenue, réessaie plus tard.")
	}
	if len(validators) == 0 {
		return c.Edit("Aucun administrateur n'est enregistré pour valider ta demande. " +
			"Contacte-nous directement via logistique@agepoly.ch !")
	}

	sender := c.Sender()
	card := fmt.Sprintf("%s %s", sender.FirstName, sender.LastName)
	if sender.Username != "" {
		card += " (@" + sender.Username + ")"
	}
	card += fmt.Sprintf(" demande le rôle \"%s\".", tier)

	// Every validator gets an independently actionable card; the first
	// decision wins on the requester's tier, the others stay pressable.
	for _, validator := range validators {
		if _, err := bot.B.Send(&telebot.User{ID: validator.ID}, card, approvalKeyboard(tier, a.RequesterID)); err != nil {
			log.Printf("send approval card to %d: %v", validator.ID, err)
		}
	}
	return c.Edit("Merci pour ta demande ! Ton rôle sera modéré au plus vite !")
}

func (bot *Bot) handleApproveTier(c telebot.Context, a token.ApproveTier) error {
	tier, err := accred.FromValue(a.Tier)
	if err != nil {
		return bot.callbackFallback(c)
	}
	if err := bot.Accred.Grant(a.RequesterID, tier); err != nil {
		if errors.Is(err, accred.ErrUnregistered) {
			return c.Edit("Cette personne n'est plus enregistrée.")
		}
		log.Printf("grant tier %v to %d: %v", tier, a.RequesterID, err)
		return c.Edit("Une erreur est survenue, réessaie plus tard.")
	}
	if _, err := bot.B.Send(&telebot.User{ID: a.RequesterID},
		"Ta demande a été acceptée et ton rôle a été modifié !"); err != nil {
		log.Printf("notify requester %d: %v", a.RequesterID, err)
	}
	return c.Edit("Le rôle a été modifié !")
}

func (bot *Bot) handleDenyTier(c telebot.Context, a token.DenyTier) error {
	if _, err := bot.B.Send(&telebot.User{ID: a.RequesterID},
		"Ta demande a été refusée. Si tu penses qu'il s'agit d'une erreur tu peux nous contacter avec /contact !"); err != nil {
		log.Printf("notify requester %d: %v", a.RequesterID, err)
	}
	return c.Edit("Le rôle reste inchangé. La personne qui a fait la demande a été prévenue.")
}

// --- Team action family ---

func (bot *Bot) teamAction(c telebot.Context, action token.Action) (bool, error) {
	switch a := action.(type) {
	case token.ListReservations:
		return true, bot.editReservationList(c, view{Filter: a.Filter, Page: a.Page})
	case token.PageTo:
		return true, bot.editReservationList(c, view{Filter: a.Filter, Page: a.Page})
	case token.OpenReservation:
		return true, bot.openReservation(c, a.PK)
	case token.Agreement:
		return true, bot.sendAgreement(c, a.PK)
	}
	return false, nil
}

func (bot *Bot) editReservationList(c telebot.Context, v view) error {
	markup, page, err := bot.reservationsMarkup(v)
	if err != nil {
		log.Printf("list reservations: %v", err)
		return c.Edit("Impossible de récupérer les réservations pour le moment. 😢")
	}
	return c.Edit(fmt.Sprintf("%s (page %d)", reservationMenuMessage, page+1), markup)
}

func (bot *Bot) openReservation(c telebot.Context, pk int) error {
	res, err := bot.Cache.ByPK(pk)
	if errors.Is(err, truffe.ErrNotFound) {
		return bot.editReservationList(c, defaultView())
	}
	if err != nil {
		log.Printf("open reservation %d: %v", pk, err)
		return c.Edit("Impossible de récupérer les réservations pour le moment. 😢")
	}
	return c.Edit(formatReservation(res), reservationDetailMarkup(res), telebot.ModeMarkdownV2)
}

func (bot *Bot) sendAgreement(c telebot.Context, pk int) error {
	pdf, err := bot.Client.AgreementPDF(pk)
	if err != nil {
		log.Printf("fetch agreement %d: %v", pk, err)
		return c.Send("Impossible de récupérer la convention pour le moment. 😢")
	}
	document := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader(pdf)),
		FileName: fmt.Sprintf("convention_%d.pdf", pk),
	}
	return c.Send(document)
}
