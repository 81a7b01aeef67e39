package codec

import (
	"fmt"

	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// EncodeAttachment returns the document form of a.
func EncodeAttachment(a *model.Attachment) docstore.Document {
	doc := encodeBase(a.Base)
	doc["url"] = a.URL
	doc["type"] = string(a.Type)
	doc["note_id"] = a.NoteID
	return doc
}

// DecodeAttachment rebuilds an attachment. An unknown type token yields a
// *model.ValidationError.
func DecodeAttachment(doc docstore.Document) (*model.Attachment, error) {
	base, err := decodeBase(doc)
	if err != nil {
		return nil, err
	}
	url, err := stringOrEmpty(doc, "url")
	if err != nil {
		return nil, err
	}
	token, err := requiredString(doc, "type")
	if err != nil {
		return nil, err
	}
	typ, err := model.ParseAttachmentType(token)
	if err != nil {
		return nil, err
	}
	noteID, err := stringOrEmpty(doc, "note_id")
	if err != nil {
		return nil, err
	}
	return &model.Attachment{Base: base, URL: url, Type: typ, NoteID: noteID}, nil
}

// EncodeNote returns the transport form of n with attachments embedded.
func EncodeNote(n *model.Note) docstore.Document {
	doc := encodeNoteFields(n)
	attachments := make([]any, 0, len(n.Attachments))
	for _, a := range n.Attachments {
		attachments = append(attachments, EncodeAttachment(a))
	}
	doc["attachments"] = attachments
	return doc
}

// EncodeNoteRecord returns the storage form of n. Attachments live in their
// own collection, so only their ids are kept.
func EncodeNoteRecord(n *model.Note) docstore.Document {
	doc := encodeNoteFields(n)
	ids := make([]any, 0, len(n.Attachments))
	for _, a := range n.Attachments {
		ids = append(ids, a.ID)
	}
	doc["attachment_ids"] = ids
	return doc
}

func encodeNoteFields(n *model.Note) docstore.Document {
	doc := encodeBase(n.Base)
	doc["content"] = n.Content
	return doc
}

// DecodeNote rebuilds a note from either form. Embedded attachments are
// decoded; stored attachment ids are not resolved here.
func DecodeNote(doc docstore.Document) (*model.Note, error) {
	base, err := decodeBase(doc)
	if err != nil {
		return nil, err
	}
	content, err := stringOrEmpty(doc, "content")
	if err != nil {
		return nil, err
	}
	nested, err := documentList(doc, "attachments")
	if err != nil {
		return nil, err
	}

	n := &model.Note{Base: base, Content: content, Attachments: make([]*model.Attachment, 0, len(nested))}
	for i, d := range nested {
		a, err := DecodeAttachment(d)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		n.Attachments = append(n.Attachments, a)
	}
	return n, nil
}

// NoteAttachmentIDs returns the attachment ids recorded in a stored note.
func NoteAttachmentIDs(doc docstore.Document) []string {
	var ids []string
	switch x := doc["attachment_ids"].(type) {
	case []string:
		ids = append(ids, x...)
	case []any:
		for _, v := range x {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
	}
	return ids
}
