package onesecmail

import (
	"context"

	"github.com/onesecmail/client-go/internal/api"
)

// ShortMessageData is the plain form of a message summary.
type ShortMessageData = api.ShortMessage

// MessageData is the plain form of a full message.
type MessageData = api.Message

// AttachmentData is the plain form of an attachment description.
type AttachmentData = api.Attachment

// ShortMessage is a message summary as listed for a mailbox.
type ShortMessage struct {
	ID      int64
	From    string
	Subject string
	Date    string

	mailbox *Mailbox
}

func newShortMessage(m *Mailbox, msg api.ShortMessage) *ShortMessage {
	return &ShortMessage{
		ID:      msg.ID,
		From:    msg.From,
		Subject: msg.Subject,
		Date:    msg.Date,
		mailbox: m,
	}
}

// Mailbox returns the mailbox the message belongs to.
func (s *ShortMessage) Mailbox() *Mailbox {
	return s.mailbox
}

// FetchFullMessage reads the whole message. It returns ErrMessageNotFound
// if the message no longer exists.
func (s *ShortMessage) FetchFullMessage(ctx context.Context, opts ...CallOption) (*Message, error) {
	return s.mailbox.ReadMessage(ctx, s.ID, opts...)
}

// Serialize returns the plain data of the summary.
func (s *ShortMessage) Serialize() ShortMessageData {
	return ShortMessageData{
		ID:      s.ID,
		From:    s.From,
		Subject: s.Subject,
		Date:    s.Date,
	}
}

// Message is a full message with its bodies and attachment descriptions.
type Message struct {
	ID          int64
	From        string
	Subject     string
	Date        string
	Attachments []*Attachment
	Body        string
	TextBody    string
	HTMLBody    string
}

func newMessage(m *Mailbox, msg *api.Message) *Message {
	attachments := make([]*Attachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, &Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			messageID:   msg.ID,
			mailbox:     m,
		})
	}
	return &Message{
		ID:          msg.ID,
		From:        msg.From,
		Subject:     msg.Subject,
		Date:        msg.Date,
		Attachments: attachments,
		Body:        msg.Body,
		TextBody:    msg.TextBody,
		HTMLBody:    msg.HTMLBody,
	}
}

// Serialize returns the plain data of the message.
func (m *Message) Serialize() MessageData {
	attachments := make([]AttachmentData, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, a.Serialize())
	}
	return MessageData{
		ID:          m.ID,
		From:        m.From,
		Subject:     m.Subject,
		Date:        m.Date,
		Attachments: attachments,
		Body:        m.Body,
		TextBody:    m.TextBody,
		HTMLBody:    m.HTMLBody,
	}
}

// Attachment describes a file attached to a message. The bytes are
// fetched with Download.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64

	messageID int64
	mailbox   *Mailbox
}

// MessageID returns the id of the message the attachment belongs to.
func (a *Attachment) MessageID() int64 {
	return a.messageID
}

// Download fetches the attachment bytes. It returns ErrAttachmentNotFound
// if the file no longer exists.
func (a *Attachment) Download(ctx context.Context, opts ...CallOption) ([]byte, error) {
	return a.mailbox.Download(ctx, a.messageID, a.Filename, opts...)
}

// Serialize returns the plain data of the attachment.
func (a *Attachment) Serialize() AttachmentData {
	return AttachmentData{
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        a.Size,
	}
}
