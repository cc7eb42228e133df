package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/Houeta/staff-directory/internal/models"
	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLen = 200

var ErrNotRecord = errors.New("response is neither an object nor a list of objects")

// Shape tells how a record-bearing body was laid out.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeList
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the body should be treated as JSON. Bodies without a JSON content
// type still count when they look like a JSON document, since some stores answer text/plain.
func (r Response) IsJSON() bool {
	media, _, err := mime.ParseMediaType(r.ContentType)
	if err == nil && (media == "application/json" || strings.HasSuffix(media, "+json")) {
		return true
	}
	if r.isHTML() {
		return false
	}
	trimmed := bytes.TrimSpace(r.Body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func (r Response) isHTML() bool {
	media, _, err := mime.ParseMediaType(r.ContentType)
	return err == nil && media == "text/html"
}

// Records decodes the body as a single record or a list of records.
func (r Response) Records() ([]models.Record, Shape, error) {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 {
		return nil, ShapeObject, ErrNotRecord
	}

	switch trimmed[0] {
	case '{':
		rec, err := models.DecodeRecord(trimmed)
		if err != nil {
			return nil, ShapeObject, err
		}
		return []models.Record{rec}, ShapeObject, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, ShapeList, fmt.Errorf("%w: %w", ErrNotRecord, err)
		}
		// elements that are not objects are skipped
		out := make([]models.Record, 0, len(items))
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			rec, err := models.DecodeRecord(item)
			if err != nil {
				continue
			}
			out = append(out, rec)
		}
		return out, ShapeList, nil
	default:
		return nil, ShapeObject, ErrNotRecord
	}
}

// SingleRecord reports the body as one non-empty record: an object or a one-element list.
func (r Response) SingleRecord() (models.Record, bool) {
	records, _, err := r.Records()
	if err != nil || len(records) != 1 || len(records[0]) == 0 {
		return nil, false
	}
	return records[0], true
}

// Summary is a short human-readable rendering of the body for error messages.
// JSON bodies yield their "error" or "message" field, HTML pages their title and text.
func (r Response) Summary() string {
	var text string
	switch {
	case r.isHTML():
		text = summarizeHTML(r.Body)
	case r.IsJSON():
		text = summarizeJSON(r.Body)
	default:
		text = string(r.Body)
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSummaryLen {
		text = text[:maxSummaryLen] + "..."
	}
	return text
}

// Err describes a non-2xx response.
func (r Response) Err() error {
	return fmt.Errorf("%w, status code: %d: %s", ErrUnexpectedStatus, r.StatusCode, r.Summary())
}

func summarizeJSON(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(body)
}

func summarizeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, head").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())

	switch {
	case title == "":
		return text
	case text == "" || strings.HasPrefix(text, title):
		return title
	default:
		return title + ": " + text
	}
}
