package codec

import (
	"fmt"

	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// EncodeSynthesis returns the document form of s. The form is the same for
// storage and transport.
func EncodeSynthesis(s *model.Synthesis) docstore.Document {
	doc := encodeBase(s.Base)
	doc["url"] = s.URL
	doc["is_generated"] = s.IsGenerated
	doc["note_id"] = optionalStringValue(s.NoteID)
	doc["title"] = optionalStringValue(s.Title)

	attachments := make([]any, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		attachments = append(attachments, docstore.Document{
			"url":  a.URL,
			"type": a.Type,
			"name": a.Name,
			"size": a.Size,
		})
	}
	doc["attachments"] = attachments
	return doc
}

// DecodeSynthesis rebuilds a synthesis.
func DecodeSynthesis(doc docstore.Document) (*model.Synthesis, error) {
	base, err := decodeBase(doc)
	if err != nil {
		return nil, err
	}

	s := &model.Synthesis{Base: base}
	if s.URL, err = stringOrEmpty(doc, "url"); err != nil {
		return nil, err
	}
	if s.IsGenerated, err = boolField(doc, "is_generated", false); err != nil {
		return nil, err
	}
	if s.NoteID, err = optionalString(doc, "note_id"); err != nil {
		return nil, err
	}
	if s.Title, err = optionalString(doc, "title"); err != nil {
		return nil, err
	}

	nested, err := documentList(doc, "attachments")
	if err != nil {
		return nil, err
	}
	s.Attachments = make([]model.SynthesisAttachment, 0, len(nested))
	for i, d := range nested {
		a, err := decodeSynthesisAttachment(d)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		s.Attachments = append(s.Attachments, a)
	}
	return s, nil
}

func decodeSynthesisAttachment(doc docstore.Document) (model.SynthesisAttachment, error) {
	var (
		a   model.SynthesisAttachment
		err error
	)
	if a.URL, err = stringOrEmpty(doc, "url"); err != nil {
		return a, err
	}
	if a.Type, err = stringOrEmpty(doc, "type"); err != nil {
		return a, err
	}
	if a.Name, err = stringOrEmpty(doc, "name"); err != nil {
		return a, err
	}
	if a.Size, err = int64Field(doc, "size"); err != nil {
		return a, err
	}
	return a, nil
}
