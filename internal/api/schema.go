package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
)

// maxSafeInteger is the largest integer a provider id or size may take.
const maxSafeInteger = 1<<53 - 1

var (
	emailPattern  = regexp.MustCompile(`(?i)^[a-z0-9_'+\-.]*[a-z0-9_+\-]@([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}$`)
	domainPattern = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*\.)+[a-z]{2,}$`)
)

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}

// IsDomain reports whether s is a valid domain suffix.
func IsDomain(s string) bool {
	return domainPattern.MatchString(s)
}

// decodeJSON parses body into generic values. Numbers stay json.Number so
// integer checks are exact.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// validator collects shape violations by JSON path.
type validator struct {
	issues []string
}

func (v *validator) addf(path, format string, args ...any) {
	if path == "" {
		path = "(root)"
	}
	v.issues = append(v.issues, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) ok() bool {
	return len(v.issues) == 0
}

func (v *validator) array(path string, val any) ([]any, bool) {
	arr, ok := val.([]any)
	if !ok {
		v.addf(path, "expected array, got %s", typeName(val))
	}
	return arr, ok
}

func (v *validator) object(path string, val any) (map[string]any, bool) {
	obj, ok := val.(map[string]any)
	if !ok {
		v.addf(path, "expected object, got %s", typeName(val))
	}
	return obj, ok
}

func (v *validator) field(path string, obj map[string]any, key string) (any, bool) {
	val, ok := obj[key]
	if !ok {
		v.addf(path+"."+key, "required")
	}
	return val, ok
}

func (v *validator) str(path string, val any) (string, bool) {
	s, ok := val.(string)
	if !ok {
		v.addf(path, "expected string, got %s", typeName(val))
	}
	return s, ok
}

func (v *validator) nonEmpty(path string, val any) string {
	s, ok := v.str(path, val)
	if ok && s == "" {
		v.addf(path, "must not be empty")
	}
	return s
}

func (v *validator) email(path string, val any) string {
	s, ok := v.str(path, val)
	if ok && !IsEmail(s) {
		v.addf(path, "invalid email %q", s)
	}
	return s
}

// integer accepts safe integers no smaller than min.
func (v *validator) integer(path string, val any, min int64) int64 {
	n, ok := val.(json.Number)
	if !ok {
		v.addf(path, "expected number, got %s", typeName(val))
		return 0
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		v.addf(path, "expected integer, got %s", n)
		return 0
	}
	if math.Abs(f) > maxSafeInteger {
		v.addf(path, "integer %s is not safe", n)
		return 0
	}
	i := int64(f)
	if i < min {
		v.addf(path, "must be >= %d, got %d", min, i)
	}
	return i
}

func typeName(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", val)
	}
}

func (v *validator) shortMessage(path string, val any) ShortMessage {
	var m ShortMessage
	obj, ok := v.object(path, val)
	if !ok {
		return m
	}
	if f, ok := v.field(path, obj, "id"); ok {
		m.ID = v.integer(path+".id", f, 1)
	}
	if f, ok := v.field(path, obj, "from"); ok {
		m.From = v.email(path+".from", f)
	}
	if f, ok := v.field(path, obj, "subject"); ok {
		m.Subject, _ = v.str(path+".subject", f)
	}
	if f, ok := v.field(path, obj, "date"); ok {
		m.Date = v.nonEmpty(path+".date", f)
	}
	return m
}

func (v *validator) attachment(path string, val any) Attachment {
	var a Attachment
	obj, ok := v.object(path, val)
	if !ok {
		return a
	}
	if f, ok := v.field(path, obj, "filename"); ok {
		a.Filename = v.nonEmpty(path+".filename", f)
	}
	if f, ok := v.field(path, obj, "contentType"); ok {
		a.ContentType = v.nonEmpty(path+".contentType", f)
	}
	if f, ok := v.field(path, obj, "size"); ok {
		a.Size = v.integer(path+".size", f, 0)
	}
	return a
}

func (v *validator) message(path string, val any) Message {
	short := v.shortMessage(path, val)
	m := Message{
		ID:      short.ID,
		From:    short.From,
		Subject: short.Subject,
		Date:    short.Date,
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return m
	}
	if f, ok := v.field(path, obj, "attachments"); ok {
		if arr, ok := v.array(path+".attachments", f); ok {
			m.Attachments = make([]Attachment, 0, len(arr))
			for i, item := range arr {
				m.Attachments = append(m.Attachments, v.attachment(fmt.Sprintf("%s.attachments[%d]", path, i), item))
			}
		}
	}
	if f, ok := v.field(path, obj, "body"); ok {
		m.Body, _ = v.str(path+".body", f)
	}
	if f, ok := v.field(path, obj, "textBody"); ok {
		m.TextBody, _ = v.str(path+".textBody", f)
	}
	if f, ok := v.field(path, obj, "htmlBody"); ok {
		m.HTMLBody, _ = v.str(path+".htmlBody", f)
	}
	return m
}

// parse decodes body and runs check over it. Decode failures and shape
// violations both become a ValidationError for action.
func parse[T any](action string, body []byte, check func(v *validator, root any) T) (T, error) {
	var zero T
	root, err := decodeJSON(body)
	if err != nil {
		return zero, &ValidationError{Action: action, Err: err}
	}
	v := &validator{}
	out := check(v, root)
	if !v.ok() {
		return zero, &ValidationError{Action: action, Errors: v.issues}
	}
	return out, nil
}

func parseAddressList(body []byte, count int) ([]string, error) {
	return parse(ActionGenRandomMailbox, body, func(v *validator, root any) []string {
		arr, ok := v.array("", root)
		if !ok {
			return nil
		}
		if len(arr) != count {
			v.addf("", "expected %d addresses, got %d", count, len(arr))
		}
		out := make([]string, 0, len(arr))
		for i, item := range arr {
			out = append(out, v.email(fmt.Sprintf("[%d]", i), item))
		}
		return out
	})
}

func parseDomainList(body []byte) ([]string, error) {
	return parse(ActionGetDomainList, body, func(v *validator, root any) []string {
		arr, ok := v.array("", root)
		if !ok {
			return nil
		}
		if len(arr) == 0 {
			v.addf("", "must contain at least one domain")
		}
		out := make([]string, 0, len(arr))
		for i, item := range arr {
			path := fmt.Sprintf("[%d]", i)
			s, ok := v.str(path, item)
			if ok && !IsDomain(s) {
				v.addf(path, "invalid domain %q", s)
			}
			out = append(out, s)
		}
		return out
	})
}

func parseShortMessages(body []byte) ([]ShortMessage, error) {
	return parse(ActionGetMessages, body, func(v *validator, root any) []ShortMessage {
		arr, ok := v.array("", root)
		if !ok {
			return nil
		}
		out := make([]ShortMessage, 0, len(arr))
		for i, item := range arr {
			out = append(out, v.shortMessage(fmt.Sprintf("[%d]", i), item))
		}
		return out
	})
}

func parseMessage(body []byte) (*Message, error) {
	return parse(ActionReadMessage, body, func(v *validator, root any) *Message {
		m := v.message("", root)
		return &m
	})
}
