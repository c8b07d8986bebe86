package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Boundary is the multipart delimiter shared by the Content-Type header and
// every part of a request body.
const Boundary = "Boundary-ArabahForm7MA4YWxkTrZu0gW"

// MultipartEncoder serializes form parameters into a multipart/form-data body.
type MultipartEncoder interface {
	Encode(params Params, boundary string) ([]byte, error)
}

// FormEncoder is the default MultipartEncoder.
type FormEncoder struct{}

var _ MultipartEncoder = FormEncoder{}

// MultipartContentType returns the Content-Type header value for boundary.
func MultipartContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// Encode writes one part per parameter in insertion order. A slice of
// attachments produces one part per attachment under the same name. Empty
// params encode as the bare terminal delimiter.
func (FormEncoder) Encode(params Params, boundary string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.SetBoundary(boundary); err != nil {
		return nil, NewError(KindInvalidEncoding, fmt.Sprintf("invalid boundary: %v", err))
	}
	if len(params) == 0 {
		return []byte("--" + boundary + "--\r\n"), nil
	}

	for _, item := range params {
		var err error
		switch v := item.Value.(type) {
		case Attachment:
			err = writeAttachment(writer, item.Key, v)
		case *Attachment:
			if v != nil {
				err = writeAttachment(writer, item.Key, *v)
			}
		case []Attachment:
			for _, a := range v {
				if err = writeAttachment(writer, item.Key, a); err != nil {
					break
				}
			}
		default:
			err = writer.WriteField(item.Key, formatValue(v))
		}
		if err != nil {
			return nil, NewError(KindInvalidEncoding, fmt.Sprintf("failed to write field %s: %v", item.Key, err))
		}
	}

	if err := writer.Close(); err != nil {
		return nil, NewError(KindInvalidEncoding, fmt.Sprintf("failed to close multipart writer: %v", err))
	}
	return body.Bytes(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeAttachment(writer *multipart.Writer, key string, a Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(key), quoteEscaper.Replace(a.FileName)))
	h.Set("Content-Type", a.mimeType())
	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(a.Data)
	return err
}
