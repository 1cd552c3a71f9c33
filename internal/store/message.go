package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

// Message is private mail between two users. Each party can delete their copy
// without affecting the other's; the row survives until both have.
type Message struct {
	gorm.Model
	Sender             string `gorm:"index"`
	Recipient          string `gorm:"index"`
	Subject            string
	Content            string
	ReadAt             *time.Time
	DeletedBySender    bool
	DeletedByRecipient bool
}

// Unread reports whether the recipient has opened the message.
func (m *Message) Unread() bool {
	return m.ReadAt == nil
}

func (s *Store) SendMessage(sender, recipient, subject, content string) (*Message, error) {
	if _, err := s.FindUserByUsername(recipient); err != nil {
		return nil, err
	}
	m := Message{
		Sender:    sender,
		Recipient: recipient,
		Subject:   subject,
		Content:   content,
	}
	if err := s.DB.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Inbox returns messages addressed to username that they have not deleted,
// newest first.
func (s *Store) Inbox(username string) ([]Message, error) {
	var msgs []Message
	err := s.DB.
		Where("recipient = ? AND deleted_by_recipient = ?", username, false).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// Outbox returns messages username sent and has not deleted, newest first.
func (s *Store) Outbox(username string) ([]Message, error) {
	var msgs []Message
	err := s.DB.
		Where("sender = ? AND deleted_by_sender = ?", username, false).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (s *Store) FindMessage(id uint) (*Message, error) {
	var m Message
	if err := s.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// MarkMessageRead stamps the first time the recipient opens the message.
func (s *Store) MarkMessageRead(id uint) error {
	m, err := s.FindMessage(id)
	if err != nil {
		return err
	}
	if m.ReadAt != nil {
		return nil
	}
	now := time.Now()
	return s.DB.Model(m).Update("read_at", &now).Error
}

// DeleteMessageFor hides the message from one party; the row is removed once
// neither party can see it.
func (s *Store) DeleteMessageFor(id uint, username string) error {
	m, err := s.FindMessage(id)
	if err != nil {
		return err
	}

	switch username {
	case m.Sender:
		m.DeletedBySender = true
	case m.Recipient:
		m.DeletedByRecipient = true
	default:
		return ErrMessageNotFound
	}

	if m.DeletedBySender && m.DeletedByRecipient {
		return s.DB.Unscoped().Delete(m).Error
	}
	return s.DB.Save(m).Error
}

func (s *Store) CountUnreadMessages(username string) (int64, error) {
	var count int64
	err := s.DB.Model(&Message{}).
		Where("recipient = ? AND deleted_by_recipient = ? AND read_at IS NULL", username, false).
		Count(&count).Error
	return count, err
}
