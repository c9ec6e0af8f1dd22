package user

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/redmonkez12/shop-api/internal/record"
)

// User is a customer account. Profile members (name, address, phone...) live in Extra.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"passwordHash,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitzero"`
	Extra        record.Fields `json:"-"`
}

// legacyPasswordField holds plaintext passwords in records written before hashing
const legacyPasswordField = "password"

var knownFields = []string{"id", "email", "passwordHash", "createdAt"}

type userJSON User

func (u User) MarshalJSON() ([]byte, error) {
	return record.Join(userJSON(u), u.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var v userJSON
	extra, err := record.Split(data, &v, knownFields...)
	if err != nil {
		return err
	}
	*u = User(v)
	u.Extra = extra
	return nil
}

// Public returns the user without any credential material
func (u *User) Public() (record.Fields, error) {
	fields, err := record.ToFields(u)
	if err != nil {
		return nil, err
	}
	return fields.Without("passwordHash", legacyPasswordField), nil
}

// legacyPassword returns the plaintext password of a record that predates hashing
func (u *User) legacyPassword() (string, bool) {
	raw, ok := u.Extra[legacyPasswordField]
	if !ok {
		return "", false
	}
	var password string
	if err := json.Unmarshal(raw, &password); err != nil {
		return "", false
	}
	return password, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sameEmail(a, b string) bool {
	return normalizeEmail(a) == normalizeEmail(b)
}
