package codec

import (
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// EncodeUser returns the outbound form of u. It never contains the password hash.
func EncodeUser(u *model.User) docstore.Document {
	doc := encodeBase(u.Base)
	doc["username"] = u.Username
	doc["email"] = u.Email
	doc["role"] = string(u.Role)
	doc["is_active"] = u.IsActive
	doc["last_login"] = optionalTimeValue(u.LastLogin)
	return doc
}

// EncodeUserWithToken returns the outbound form of u plus an access token.
func EncodeUserWithToken(u *model.User, token string) docstore.Document {
	doc := EncodeUser(u)
	doc["token"] = token
	return doc
}

// EncodeUserRecord returns the storage form of u, including the password hash.
func EncodeUserRecord(u *model.User) docstore.Document {
	doc := EncodeUser(u)
	doc["password_hash"] = u.PasswordHash
	return doc
}

// DecodeUser rebuilds a user from either form. The password hash is empty
// when decoding the outbound form.
func DecodeUser(doc docstore.Document) (*model.User, error) {
	base, err := decodeBase(doc)
	if err != nil {
		return nil, err
	}

	u := &model.User{Base: base}
	if u.Username, err = requiredString(doc, "username"); err != nil {
		return nil, err
	}
	if u.Email, err = requiredString(doc, "email"); err != nil {
		return nil, err
	}
	if u.PasswordHash, err = stringOrEmpty(doc, "password_hash"); err != nil {
		return nil, err
	}

	role, err := stringOrEmpty(doc, "role")
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = string(model.RoleUser)
	}
	if u.Role, err = model.ParseRole(role); err != nil {
		return nil, err
	}

	if u.IsActive, err = boolField(doc, "is_active", true); err != nil {
		return nil, err
	}
	if u.LastLogin, err = optionalTime(doc, "last_login"); err != nil {
		return nil, err
	}
	return u, nil
}
