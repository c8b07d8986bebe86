package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Attachment is a binary form field, typically image data read right before
// the request is built.
type Attachment struct {
	Data     []byte
	FileName string
	MimeType string
}

var errAttachmentJSON = errors.New("attachments cannot be encoded as JSON")

// MarshalJSON always fails: binary attachments only travel in multipart bodies.
func (Attachment) MarshalJSON() ([]byte, error) {
	return nil, errAttachmentJSON
}

func (a Attachment) mimeType() string {
	if strings.TrimSpace(a.MimeType) == "" {
		return "application/octet-stream"
	}
	return a.MimeType
}

// Param is a single named request parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter list. Values are scalars
// (rendered with their natural string form), an Attachment, or a slice of
// attachments.
type Params []Param

// NewParams builds Params from alternating key/value arguments.
// A trailing key without a value is ignored.
func NewParams(kv ...any) Params {
	p := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		p.Set(key, kv[i+1])
	}
	return p
}

// Set stores value under key. An existing key keeps its position.
func (p *Params) Set(key string, value any) *Params {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return p
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
	return p
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, item := range p {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Keys returns the parameter names in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, item := range p {
		keys = append(keys, item.Key)
	}
	return keys
}

// Query renders the parameters as k1=v1&k2=v2 in insertion order.
// Keys and values are percent-encoded.
func (p Params) Query() string {
	pairs := make([]string, 0, len(p))
	for _, item := range p {
		pairs = append(pairs, url.QueryEscape(item.Key)+"="+url.QueryEscape(formatValue(item.Value)))
	}
	return strings.Join(pairs, "&")
}

// MarshalJSON encodes the parameters as a JSON object, preserving order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", item.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// formatValue renders a scalar the way it appears in query strings and
// multipart text parts.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
