package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// FormData is a multipart/form-data payload. Fields and files are written
// in the order they were added.
type FormData struct {
	parts []formPart
}

type formPart struct {
	field       string
	value       string
	filename    string
	contentType string
	content     []byte
}

// NewFormData returns an empty form.
func NewFormData() *FormData { return &FormData{} }

// Add appends a plain field.
func (f *FormData) Add(field, value string) *FormData {
	f.parts = append(f.parts, formPart{field: field, value: value})
	return f
}

// AddFile appends a file part. An empty contentType defaults to
// application/octet-stream.
func (f *FormData) AddFile(field, filename, contentType string, content []byte) *FormData {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, formPart{
		field:       field,
		filename:    filename,
		contentType: contentType,
		content:     content,
	})
	return f
}

// Len returns the number of parts.
func (f *FormData) Len() int { return len(f.parts) }

// Encode renders the form. It returns the body and the Content-Type header
// value carrying the boundary.
func (f *FormData) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.filename == "" {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.field), quoteEscaper.Replace(p.filename)))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
