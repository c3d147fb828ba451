package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"logibot/accred"
	"logibot/relay"

	"gopkg.in/telebot.v3"
)

// handleText feeds the support relay. Text typed in a private chat is
// copied into the support chat under an identity header; replies in the
// support chat to a relayed copy go back to the user, unattributed, as
// if from the bot.
func (bot *Bot) handleText(c telebot.Context) error {
	if bot.supportChatID == 0 {
		return nil
	}
	if c.Chat().ID == bot.supportChatID {
		return bot.relayFromSupport(c)
	}
	if c.Chat().Type == telebot.ChatPrivate {
		return bot.relayToSupport(c)
	}
	return nil
}

func (bot *Bot) relayToSupport(c telebot.Context) error {
	if !bot.gate(c, accred.External) {
		return nil
	}
	msg := c.Message()

	// Continuing a thread: if the user replied to a message that was
	// relayed to them, thread the copy under the support-side original.
	var threadUnder int64
	if msg.ReplyTo != nil {
		if record, err := bot.Bridge.ResolveThread(int64(msg.ReplyTo.ID)); err == nil {
			threadUnder = record.OriginalID
		}
	}

	sender := c.Sender()
	header := fmt.Sprintf("📨 %s %s", sender.FirstName, sender.LastName)
	if sender.Username != "" {
		header += " (@" + sender.Username + ")"
	}
	// The header is the natural reply target for support members, so it
	// gets a relay record of its own pointing back at the same original.
	headerMsg, err := bot.B.Send(telebot.ChatID(bot.supportChatID), header)
	if err != nil {
		log.Printf("send relay header: %v", err)
	} else if err := bot.Bridge.Record(int64(msg.ID), int64(headerMsg.ID), c.Chat().ID, threadUnder, msg.Text); err != nil {
		log.Printf("record relay header: %v", err)
	}

	if _, err := bot.Bridge.Relay(c.Chat().ID, bot.supportChatID, int64(msg.ID), threadUnder, msg.Text); err != nil {
		log.Printf("relay message %d to support: %v", msg.ID, err)
		return c.Reply("Ton message n'a pas pu être transmis, réessaie plus tard.")
	}
	return nil
}

func (bot *Bot) relayFromSupport(c telebot.Context) error {
	msg := c.Message()
	if msg.ReplyTo == nil {
		// Ordinary chatter in the support chat is not relayed anywhere.
		return nil
	}

	record, err := bot.Bridge.ResolveThread(int64(msg.ReplyTo.ID))
	if errors.Is(err, relay.ErrThreadNotFound) {
		return c.Reply("Message original introuvable : cette réponse ne peut pas être transmise.")
	}
	if err != nil {
		log.Printf("resolve thread for %d: %v", msg.ReplyTo.ID, err)
		return c.Reply("Une erreur est survenue, réessaie plus tard.")
	}

	_, err = bot.Bridge.Relay(c.Chat().ID, record.ChatID, int64(msg.ID), record.OriginalID, msg.Text)
	if err != nil {
		log.Printf("relay reply %d back to %d: %v", msg.ID, record.ChatID, err)
		return c.Reply("La réponse n'a pas pu être transmise, réessaie plus tard.")
	}
	return nil
}

// Copy implements relay.Copier over the transport. The copy carries no
// "forwarded from" attribution.
func (bot *Bot) Copy(dstChatID, srcChatID, messageID, replyToID int64) (int64, error) {
	stored := telebot.StoredMessage{
		MessageID: strconv.FormatInt(messageID, 10),
		ChatID:    srcChatID,
	}
	opts := &telebot.SendOptions{}
	if replyToID != 0 {
		opts.ReplyTo = &telebot.Message{ID: int(replyToID), Chat: &telebot.Chat{ID: dstChatID}}
	}
	copied, err := bot.B.Copy(telebot.ChatID(dstChatID), stored, opts)
	if err != nil {
		return 0, err
	}
	return int64(copied.ID), nil
}
