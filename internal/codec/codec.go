// Package codec maps domain entities to and from store documents.
//
// Every entity has an explicit field list. Instants are RFC 3339 text in UTC,
// enums are their string tokens. Transport forms embed owned entities;
// storage forms hold only what the owning collection needs.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// ErrMalformed indicates a document is missing a field or holds a value of the wrong type.
var ErrMalformed = errors.New("malformed document")

// naiveLayout is an ISO-8601 instant without offset, read as UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// FormatTime renders t as RFC 3339 text in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime reads an instant written by FormatTime, or a naive ISO-8601
// instant which is taken to be UTC.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(naiveLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad instant %q", ErrMalformed, s)
	}
	return t.UTC(), nil
}

func encodeBase(b model.Base) docstore.Document {
	return docstore.Document{
		"id":         b.ID,
		"created_at": FormatTime(b.CreatedAt),
		"updated_at": FormatTime(b.UpdatedAt),
	}
}

func decodeBase(doc docstore.Document) (model.Base, error) {
	id, err := requiredString(doc, "id")
	if err != nil {
		return model.Base{}, err
	}
	created, err := requiredTime(doc, "created_at")
	if err != nil {
		return model.Base{}, err
	}
	updated, err := requiredTime(doc, "updated_at")
	if err != nil {
		return model.Base{}, err
	}
	return model.Base{ID: id, CreatedAt: created, UpdatedAt: updated}, nil
}

func requiredString(doc docstore.Document, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrMalformed, key, v)
	}
	return s, nil
}

func optionalString(doc docstore.Document, key string) (*string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want string", ErrMalformed, key, v)
	}
	return &s, nil
}

func stringOrEmpty(doc docstore.Document, key string) (string, error) {
	s, err := optionalString(doc, key)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

func requiredTime(doc docstore.Document, key string) (time.Time, error) {
	s, err := requiredString(doc, key)
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(s)
}

func optionalTime(doc docstore.Document, key string) (*time.Time, error) {
	s, err := optionalString(doc, key)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalTimeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

func optionalStringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolField(doc docstore.Document, key string, def bool) (bool, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, want bool", ErrMalformed, key, v)
	}
	return b, nil
}

func int64Field(doc docstore.Document, key string) (int64, error) {
	switch x := doc[key].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T, want number", ErrMalformed, key, x)
	}
}

// documentList reads a list of nested documents regardless of which
// concrete slice and map types the source produced.
func documentList(doc docstore.Document, key string) ([]docstore.Document, error) {
	switch x := doc[key].(type) {
	case nil:
		return nil, nil
	case []docstore.Document:
		return x, nil
	case []map[string]any:
		out := make([]docstore.Document, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, nil
	case []any:
		out := make([]docstore.Document, len(x))
		for i, e := range x {
			switch m := e.(type) {
			case docstore.Document:
				out[i] = m
			case map[string]any:
				out[i] = m
			default:
				return nil, fmt.Errorf("%w: %s[%d] is %T, want document", ErrMalformed, key, i, e)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want list", ErrMalformed, key, x)
	}
}
