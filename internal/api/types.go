package api

// ShortMessage is a message summary as listed by getMessages.
type ShortMessage struct {
	ID      int64  `json:"id" jsonschema:"minimum=1,description=Provider-assigned identifier; increases per mailbox"`
	From    string `json:"from" jsonschema:"format=email"`
	Subject string `json:"subject"`
	Date    string `json:"date" jsonschema:"minLength=1"`
}

// Attachment describes a message attachment. The bytes are fetched
// separately with Download.
type Attachment struct {
	Filename    string `json:"filename" jsonschema:"minLength=1"`
	ContentType string `json:"contentType" jsonschema:"minLength=1"`
	Size        int64  `json:"size" jsonschema:"minimum=0"`
}

// Message is a full message as returned by readMessage.
type Message struct {
	ID          int64        `json:"id" jsonschema:"minimum=1"`
	From        string       `json:"from" jsonschema:"format=email"`
	Subject     string       `json:"subject"`
	Date        string       `json:"date" jsonschema:"minLength=1"`
	Attachments []Attachment `json:"attachments"`
	Body        string       `json:"body"`
	TextBody    string       `json:"textBody"`
	HTMLBody    string       `json:"htmlBody"`
}

// Short returns the summary fields of the message.
func (m *Message) Short() ShortMessage {
	return ShortMessage{
		ID:      m.ID,
		From:    m.From,
		Subject: m.Subject,
		Date:    m.Date,
	}
}
