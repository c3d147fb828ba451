// Package relay stitches a private conversation to the shared support
// chat. Every relayed message leaves an append-only record linking the
// original message id to its copy, so replies on either side can be
// routed back and threaded under the right message.
package relay

import (
	"errors"
	"fmt"

	"logibot/model"

	"gorm.io/gorm"
)

// ErrThreadNotFound is returned when a reply targets a message that was
// never relayed.
var ErrThreadNotFound = errors.New("no relay record for message")

// Copier copies a message into another chat and returns the id of the
// copy. The bot adapter implements it over the transport.
type Copier interface {
	Copy(dstChatID, srcChatID, messageID, replyToID int64) (int64, error)
}

// Bridge relays messages between the private side and the support chat.
type Bridge struct {
	DB     *gorm.DB
	Copier Copier
}

func NewBridge(db *gorm.DB, copier Copier) *Bridge {
	return &Bridge{DB: db, Copier: copier}
}

// Relay copies a message into the counterpart chat and records the link.
// The record write is a single insert; a failed copy records nothing.
func (b *Bridge) Relay(srcChatID, dstChatID, messageID, replyToID int64, text string) (int64, error) {
	copyID, err := b.Copier.Copy(dstChatID, srcChatID, messageID, replyToID)
	if err != nil {
		return 0, fmt.Errorf("copy message %d to chat %d: %w", messageID, dstChatID, err)
	}
	if err := b.Record(messageID, copyID, srcChatID, replyToID, text); err != nil {
		return 0, err
	}
	return copyID, nil
}

// Record links a copy id to an original message without performing a
// copy. Used for auxiliary messages sent alongside a relayed copy, such
// as the identity header, so replies targeting them resolve too.
func (b *Bridge) Record(originalID, copyID, srcChatID, replyToID int64, text string) error {
	record := model.RelayRecord{
		OriginalID: originalID,
		CopyID:     copyID,
		ChatID:     srcChatID,
		ReplyToID:  replyToID,
		Text:       text,
	}
	if err := b.DB.Create(&record).Error; err != nil {
		return fmt.Errorf("record relay of message %d: %w", originalID, err)
	}
	return nil
}

// ResolveThread finds the record whose copy is the message a reply
// targets. The record tells the caller which chat the reply must be
// routed to and which message it threads under.
func (b *Bridge) ResolveThread(replyToID int64) (model.RelayRecord, error) {
	var record model.RelayRecord
	err := b.DB.Where("copy_id = ?", replyToID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RelayRecord{}, ErrThreadNotFound
	}
	if err != nil {
		return model.RelayRecord{}, fmt.Errorf("resolve thread for %d: %w", replyToID, err)
	}
	return record, nil
}

// ByOriginal finds the record for an original message id.
func (b *Bridge) ByOriginal(originalID int64) (model.RelayRecord, error) {
	var record model.RelayRecord
	err := b.DB.Where("original_id = ?", originalID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RelayRecord{}, ErrThreadNotFound
	}
	if err != nil {
		return model.RelayRecord{}, fmt.Errorf("lookup original %d: %w", originalID, err)
	}
	return record, nil
}
