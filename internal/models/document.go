package models

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// ContentType is a document type the extractor knows how to read.
type ContentType string

const (
	ContentTypePDF  ContentType = "application/pdf"
	ContentTypeJPEG ContentType = "image/jpeg"
	ContentTypePNG  ContentType = "image/png"
)

// ErrUnsupportedContentType is the only input-validation failure; it stops a
// request before any extraction starts.
var ErrUnsupportedContentType = errors.New("unsupported file type")

// ParseContentType maps a declared MIME type onto a supported ContentType.
// Parameters such as "; charset=binary" are ignored and "image/jpg" is
// accepted as an alias of "image/jpeg".
func ParseContentType(raw string) (ContentType, error) {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, raw)
	}
	switch mt {
	case string(ContentTypePDF):
		return ContentTypePDF, nil
	case string(ContentTypeJPEG), "image/jpg":
		return ContentTypeJPEG, nil
	case string(ContentTypePNG):
		return ContentTypePNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, raw)
}

func (c ContentType) IsImage() bool {
	return c == ContentTypeJPEG || c == ContentTypePNG
}

// Document is an uploaded file. It is consumed once by the extractor and
// never stored.
type Document struct {
	Filename    string
	ContentType ContentType
	Data        []byte
}

// PageSource records where a page's text came from.
type PageSource string

const (
	PageSourceDigital     PageSource = "digital"
	PageSourceTranscribed PageSource = "transcribed"
	PageSourceNone        PageSource = "none"
	PageSourceFailed      PageSource = "failed"
)

// PageText is the text recovered from one page.
type PageText struct {
	Index  int        `json:"index"`
	Text   string     `json:"-"`
	Source PageSource `json:"source"`
}
