package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

func noteWithAttachments(t *testing.T, n int) *model.Note {
	t.Helper()

	note := model.NewNote("content with attachments")
	for i := 0; i < n; i++ {
		typ := "Audio"
		if i%2 == 1 {
			typ = "Document"
		}
		a, err := model.NewAttachment("file.bin", typ)
		require.NoError(t, err)
		note.AddAttachment(a)
	}
	return note
}

func TestNote_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 2, 5} {
		note := noteWithAttachments(t, n)

		got, err := DecodeNote(EncodeNote(note))
		require.NoError(t, err)
		assert.Equal(t, note, got, "round trip with %d attachments", n)
	}
}

func TestNote_RoundTripThroughJSON(t *testing.T) {
	t.Parallel()

	note := noteWithAttachments(t, 2)

	raw, err := json.Marshal(EncodeNote(note))
	require.NoError(t, err)

	var doc docstore.Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	got, err := DecodeNote(doc)
	require.NoError(t, err)
	assert.Equal(t, note, got)
}

func TestNote_IgnoresStoreInternalID(t *testing.T) {
	t.Parallel()

	note := noteWithAttachments(t, 1)
	doc := EncodeNote(note)
	doc["_id"] = "64f1c0ffee"

	got, err := DecodeNote(doc)
	require.NoError(t, err)
	assert.Equal(t, note, got)
}

func TestEncodeNoteRecord_StoresIDsOnly(t *testing.T) {
	t.Parallel()

	note := noteWithAttachments(t, 2)
	doc := EncodeNoteRecord(note)

	assert.NotContains(t, doc, "attachments")
	assert.Equal(t, []any{note.Attachments[0].ID, note.Attachments[1].ID}, doc["attachment_ids"])

	got, err := DecodeNote(doc)
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)
	assert.Equal(t, note.Content, got.Content)
}

func TestEncodeAttachment_Fields(t *testing.T) {
	t.Parallel()

	note := noteWithAttachments(t, 1)
	doc := EncodeAttachment(note.Attachments[0])

	assert.Equal(t, "Audio", doc["type"])
	assert.Equal(t, note.ID, doc["note_id"])
	assert.Equal(t, FormatTime(note.Attachments[0].CreatedAt), doc["created_at"])
}

func TestDecodeAttachment_UnknownType(t *testing.T) {
	t.Parallel()

	note := noteWithAttachments(t, 1)
	doc := EncodeAttachment(note.Attachments[0])
	doc["type"] = "Video"

	_, err := DecodeAttachment(doc)
	var vErr *model.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	valid := EncodeNote(model.NewNote("x"))

	tests := []struct {
		name   string
		mutate func(docstore.Document)
	}{
		{"missing id", func(d docstore.Document) { delete(d, "id") }},
		{"id not a string", func(d docstore.Document) { d["id"] = 42 }},
		{"bad created_at", func(d docstore.Document) { d["created_at"] = "yesterday" }},
		{"attachments not a list", func(d docstore.Document) { d["attachments"] = "none" }},
		{"attachment not a document", func(d docstore.Document) { d["attachments"] = []any{"x"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docstore.Document{}
			for k, v := range valid {
				doc[k] = v
			}
			tt.mutate(doc)

			_, err := DecodeNote(doc)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)

	tests := []struct {
		in string
	}{
		{"2024-03-01T12:30:45.123456Z"},
		{"2024-03-01T14:30:45.123456+02:00"},
		{"2024-03-01T12:30:45.123456"},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, want.Equal(got), "ParseTime(%q) = %v", tt.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}
}

func TestFormatTime_UTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 1, 13, 0, 0, 0, loc)

	assert.Equal(t, "2024-03-01T12:00:00Z", FormatTime(ts))
}

func TestSynthesis_RoundTrip(t *testing.T) {
	t.Parallel()

	bare := model.NewSynthesis("https://example.com/s.pdf", false)

	full := model.NewSynthesis("https://example.com/t.pdf", true)
	full.LinkNote("note-1")
	full.SetTitle("Weekly summary")
	full.Attachments = append(full.Attachments, model.SynthesisAttachment{
		URL: "https://example.com/a.pdf", Type: "Document", Name: "a.pdf", Size: 2048,
	})

	for _, s := range []*model.Synthesis{bare, full} {
		got, err := DecodeSynthesis(EncodeSynthesis(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)

		raw, err := json.Marshal(EncodeSynthesis(s))
		require.NoError(t, err)
		var doc docstore.Document
		require.NoError(t, json.Unmarshal(raw, &doc))
		got, err = DecodeSynthesis(doc)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncodeSynthesis_NullOptionals(t *testing.T) {
	t.Parallel()

	doc := EncodeSynthesis(model.NewSynthesis("u", false))

	assert.Contains(t, doc, "note_id")
	assert.Nil(t, doc["note_id"])
	assert.Nil(t, doc["title"])
}

func TestUser_OutboundOmitsPasswordHash(t *testing.T) {
	t.Parallel()

	u := model.NewUser("alice", "alice@example.com", model.RoleAdmin)
	u.PasswordHash = "$argon2id$secret"

	doc := EncodeUser(u)
	assert.NotContains(t, doc, "password_hash")

	withToken := EncodeUserWithToken(u, "tok")
	assert.NotContains(t, withToken, "password_hash")
	assert.Equal(t, "tok", withToken["token"])

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "argon2id")
}

func TestUser_RecordRoundTrip(t *testing.T) {
	t.Parallel()

	u := model.NewUser("alice", "alice@example.com", model.RoleUser)
	u.PasswordHash = "$argon2id$secret"
	login := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	u.LastLogin = &login

	got, err := DecodeUser(EncodeUserRecord(u))
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestDecodeUser_Defaults(t *testing.T) {
	t.Parallel()

	doc := EncodeUser(model.NewUser("bob", "bob@example.com", model.RoleUser))
	delete(doc, "role")
	delete(doc, "is_active")

	got, err := DecodeUser(doc)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, got.Role)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.PasswordHash)
}
