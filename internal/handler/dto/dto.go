// Package dto provides Data Transfer Objects for API requests and responses.
// Entities are rendered through the codec package; the types here cover
// request bodies and the small envelopes around them.
package dto

import "time"

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AttachmentRequest describes one attachment of a note.
type AttachmentRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	Content     *string             `json:"content"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
}

// UpdateNoteRequest represents the request body for updating a note.
// Absent fields are left unchanged.
type UpdateNoteRequest struct {
	Content     *string              `json:"content,omitempty"`
	Attachments *[]AttachmentRequest `json:"attachments,omitempty"`
}

// SynthesisAttachmentRequest describes a file embedded in a synthesis.
type SynthesisAttachmentRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// CreateSynthesisRequest represents the request body for creating a synthesis.
type CreateSynthesisRequest struct {
	URL         string                       `json:"url"`
	IsGenerated bool                         `json:"is_generated"`
	NoteID      *string                      `json:"note_id,omitempty"`
	Title       *string                      `json:"title,omitempty"`
	Attachments []SynthesisAttachmentRequest `json:"attachments,omitempty"`
}

// TokenResponse is returned by token refresh.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClaimsResponse describes the caller as seen in its token.
type ClaimsResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody holds a stable machine readable code and a message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
