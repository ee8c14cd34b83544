package api

import (
	"context"
	"net/url"
	"strconv"
)

// Provider actions.
const (
	ActionGenRandomMailbox = "genRandomMailbox"
	ActionGetDomainList    = "getDomainList"
	ActionGetMessages      = "getMessages"
	ActionReadMessage      = "readMessage"
	ActionDownload         = "download"
	ActionDeleteMailbox    = "deleteMailbox"
)

// MaxRandomMailboxes is the largest count GenRandomMailbox accepts.
const MaxRandomMailboxes = 500

// messageNotFoundBody is the literal body readMessage answers for a gone message.
const messageNotFoundBody = "Messagenotfound"

// GenRandomMailbox requests count freshly generated addresses.
// count must be between 1 and MaxRandomMailboxes.
func (c *Client) GenRandomMailbox(ctx context.Context, count int, opts ...CallOption) ([]string, error) {
	if count < 1 || count > MaxRandomMailboxes {
		return nil, &RangeError{Param: "count", Constraint: "must be between 1 and 500", Value: count}
	}

	resp, err := c.Request(ctx, url.Values{
		"action": {ActionGenRandomMailbox},
		"count":  {strconv.Itoa(count)},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return parseAddressList(resp.Body, count)
}

// GetDomainList returns the domains the provider serves.
func (c *Client) GetDomainList(ctx context.Context, opts ...CallOption) ([]string, error) {
	resp, err := c.Request(ctx, url.Values{"action": {ActionGetDomainList}}, opts...)
	if err != nil {
		return nil, err
	}
	return parseDomainList(resp.Body)
}

// GetMessages lists the messages of a mailbox in provider order.
func (c *Client) GetMessages(ctx context.Context, local, domain string, opts ...CallOption) ([]ShortMessage, error) {
	resp, err := c.Request(ctx, mailboxParams(ActionGetMessages, local, domain), opts...)
	if err != nil {
		return nil, err
	}
	return parseShortMessages(resp.Body)
}

// ReadMessage fetches a full message. It returns nil and no error when the
// provider reports the message as not found.
func (c *Client) ReadMessage(ctx context.Context, local, domain string, id int64, opts ...CallOption) (*Message, error) {
	params := mailboxParams(ActionReadMessage, local, domain)
	params.Set("id", strconv.FormatInt(id, 10))

	resp, err := c.Request(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	if string(resp.Body) == messageNotFoundBody {
		return nil, nil
	}
	return parseMessage(resp.Body)
}

// Download fetches the bytes of an attachment. It returns nil and no error
// when the response does not carry the attachment disposition for filename,
// which is how the provider answers for a file that no longer exists.
func (c *Client) Download(ctx context.Context, local, domain string, id int64, filename string, opts ...CallOption) ([]byte, error) {
	params := mailboxParams(ActionDownload, local, domain)
	params.Set("id", strconv.FormatInt(id, 10))
	params.Set("file", filename)

	resp, err := c.Request(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	if resp.Header.Get("Content-Disposition") != ContentDisposition(filename) {
		return nil, nil
	}
	if resp.Body == nil {
		return []byte{}, nil
	}
	return resp.Body, nil
}

// DeleteMailbox removes every message of a mailbox. The provider's answer
// carries no data; only transport failures are reported.
func (c *Client) DeleteMailbox(ctx context.Context, local, domain string, opts ...CallOption) error {
	_, err := c.postForm(ctx, url.Values{
		"action": {ActionDeleteMailbox},
		"login":  {local},
		"domain": {domain},
	}, opts...)
	return err
}

// ContentDisposition returns the header value that marks a successful
// download of filename.
func ContentDisposition(filename string) string {
	return `attachment; filename="` + filename + `"`
}

func mailboxParams(action, local, domain string) url.Values {
	return url.Values{
		"action": {action},
		"login":  {local},
		"domain": {domain},
	}
}
