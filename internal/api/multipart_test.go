package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

type part struct {
	name        string
	fileName    string
	contentType string
	data        string
}

func readParts(t *testing.T, body []byte, boundary string) []part {
	t.Helper()
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	var parts []part
	for {
		p, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return parts
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		data, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}
		parts = append(parts, part{
			name:        p.FormName(),
			fileName:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			data:        string(data),
		})
	}
}

func TestFormEncoderRoundTrip(t *testing.T) {
	params := NewParams(
		"product_id", 7,
		"rating", 4.5,
		"review", "Fresh and cheap",
		"images[]", []Attachment{
			{Data: []byte("jpeg-1"), FileName: "a.jpg", MimeType: "image/jpeg"},
			{Data: []byte("png-2"), FileName: "b.png", MimeType: "image/png"},
		},
		"avatar", &Attachment{Data: []byte("raw"), FileName: "raw.bin"},
	)

	body, err := FormEncoder{}.Encode(params, Boundary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	parts := readParts(t, body, Boundary)
	want := []part{
		{name: "product_id", data: "7"},
		{name: "rating", data: "4.5"},
		{name: "review", data: "Fresh and cheap"},
		{name: "images[]", fileName: "a.jpg", contentType: "image/jpeg", data: "jpeg-1"},
		{name: "images[]", fileName: "b.png", contentType: "image/png", data: "png-2"},
		{name: "avatar", fileName: "raw.bin", contentType: "application/octet-stream", data: "raw"},
	}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(parts), len(want), parts)
	}
	for i := range want {
		got := parts[i]
		if got.name != want[i].name || got.fileName != want[i].fileName || got.data != want[i].data {
			t.Errorf("part %d = %+v, want %+v", i, got, want[i])
		}
		if want[i].contentType != "" && got.contentType != want[i].contentType {
			t.Errorf("part %d content type = %q, want %q", i, got.contentType, want[i].contentType)
		}
	}

	if !bytes.HasSuffix(body, []byte("--"+Boundary+"--\r\n")) {
		t.Error("body should end with the closing boundary")
	}
}

func TestFormEncoderEmptyParams(t *testing.T) {
	body, err := FormEncoder{}.Encode(Params{}, Boundary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := "--" + Boundary + "--\r\n"; string(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	if len(readParts(t, body, Boundary)) != 0 {
		t.Error("expected no parts")
	}
}

func TestFormEncoderInvalidBoundary(t *testing.T) {
	_, err := FormEncoder{}.Encode(NewParams("a", 1), "bad boundary with spaces at end ")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected invalid_encoding, got %v", err)
	}
}

func TestMultipartContentType(t *testing.T) {
	mediaType, params, err := mime.ParseMediaType(MultipartContentType(Boundary))
	if err != nil {
		t.Fatalf("ParseMediaType: %v", err)
	}
	if mediaType != "multipart/form-data" || params["boundary"] != Boundary {
		t.Errorf("unexpected content type %q %v", mediaType, params)
	}
}

func TestWriteAttachmentEscapesQuotes(t *testing.T) {
	body, err := FormEncoder{}.Encode(NewParams("image", Attachment{Data: []byte("x"), FileName: `my "photo".jpg`}), Boundary)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(body), `filename="my \"photo\".jpg"`) {
		t.Errorf("filename not escaped: %s", body)
	}
}
