package model

// SynthesisAttachment is a file record embedded in a Synthesis.
// It has no lifecycle of its own.
type SynthesisAttachment struct {
	URL  string
	Type string
	Name string
	Size int64
}

// Synthesis is a generated summary, optionally linked to a Note.
type Synthesis struct {
	Base
	URL         string
	IsGenerated bool
	NoteID      *string
	Title       *string
	Attachments []SynthesisAttachment
}

// NewSynthesis creates a synthesis with no note link and no attachments.
func NewSynthesis(url string, isGenerated bool) *Synthesis {
	return &Synthesis{
		Base:        newBase(),
		URL:         url,
		IsGenerated: isGenerated,
		Attachments: []SynthesisAttachment{},
	}
}

// LinkNote sets the soft reference to a note.
func (s *Synthesis) LinkNote(noteID string) {
	s.NoteID = &noteID
}

// SetTitle sets the title.
func (s *Synthesis) SetTitle(title string) {
	s.Title = &title
}
