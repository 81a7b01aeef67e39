package model

// AttachmentType is the kind of media an attachment points to.
type AttachmentType string

const (
	AttachmentAudio    AttachmentType = "Audio"
	AttachmentDocument AttachmentType = "Document"
)

// IsValid reports whether t is a known attachment type.
func (t AttachmentType) IsValid() bool {
	return t == AttachmentAudio || t == AttachmentDocument
}

// ParseAttachmentType converts a string token into an AttachmentType.
func ParseAttachmentType(token string) (AttachmentType, error) {
	t := AttachmentType(token)
	if !t.IsValid() {
		return "", &ValidationError{Field: "attachment type", Value: token, Msg: "must be Audio or Document"}
	}
	return t, nil
}

// Attachment is a media reference owned by exactly one Note.
type Attachment struct {
	Base
	URL    string
	Type   AttachmentType
	NoteID string
}

// NewAttachment creates an attachment. The back-reference is set when the
// attachment is added to a note.
func NewAttachment(url, typeToken string) (*Attachment, error) {
	t, err := ParseAttachmentType(typeToken)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Base: newBase(),
		URL:  url,
		Type: t,
	}, nil
}

// Note is a piece of text content with its attachments.
type Note struct {
	Base
	Content     string
	Attachments []*Attachment
}

// NewNote creates a note with no attachments.
func NewNote(content string) *Note {
	return &Note{
		Base:        newBase(),
		Content:     content,
		Attachments: []*Attachment{},
	}
}

// AddAttachment stamps the back-reference on a and appends it.
func (n *Note) AddAttachment(a *Attachment) {
	a.NoteID = n.ID
	n.Attachments = append(n.Attachments, a)
}

// AttachmentIDs returns the ids of the note's attachments in order.
func (n *Note) AttachmentIDs() []string {
	ids := make([]string, 0, len(n.Attachments))
	for _, a := range n.Attachments {
		ids = append(ids, a.ID)
	}
	return ids
}
