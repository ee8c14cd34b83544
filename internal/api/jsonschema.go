package api

import (
	"github.com/invopop/jsonschema"
)

// Schemas returns JSON Schemas for the provider's object shapes, keyed by
// type name. The validator in this package enforces the same constraints.
func Schemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	short := r.Reflect(&ShortMessage{})
	short.Title = "1secmail short message"
	short.Description = "One element of the getMessages list."

	msg := r.Reflect(&Message{})
	msg.Title = "1secmail message"
	msg.Description = "The readMessage body."

	att := r.Reflect(&Attachment{})
	att.Title = "1secmail attachment"
	att.Description = "One element of a message's attachments list."

	return map[string]*jsonschema.Schema{
		"ShortMessage": short,
		"Message":      msg,
		"Attachment":   att,
	}
}
