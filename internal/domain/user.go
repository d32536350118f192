package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultProvider is the provider assigned to users registered with email and password.
const DefaultProvider = "email"

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// InfoTimeLayout is the timestamp layout used by User.Info.
const InfoTimeLayout = "2006-01-02 15:04:05 MST"

var validate = validator.New()

// User represents a registered account. Password and PasswordConfirmation
// carry plaintext only while a registration or update is in flight; only
// HashedPassword is ever persisted.
type User struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	Provider             string    `json:"provider"`
	Password             string    `json:"-"`
	PasswordConfirmation string    `json:"-"`
	HashedPassword       string    `json:"-"`
	AuthToken            string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given credentials.
// An empty provider defaults to DefaultProvider. The caller is responsible
// for hashing the password and issuing an auth token before storage.
func NewUser(email, provider, password, confirmation string) (*User, error) {
	if provider == "" {
		provider = DefaultProvider
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &User{
		ID:                   uuid.New(),
		Email:                strings.TrimSpace(email),
		Provider:             provider,
		Password:             password,
		PasswordConfirmation: confirmation,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the user's fields and returns a *ValidationError listing
// every failing field, or nil.
//
// A password is required until a hash exists. The confirmation is only
// compared when one was supplied.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.ID == uuid.Nil {
		verr.Add("id", MsgBlank)
	}

	switch {
	case strings.TrimSpace(u.Email) == "":
		verr.Add("email", MsgBlank)
	case validate.Var(u.Email, "email") != nil:
		verr.Add("email", MsgInvalid)
	}

	if u.Provider == "" {
		verr.Add("provider", MsgBlank)
	}

	switch {
	case u.Password == "" && u.HashedPassword == "":
		verr.Add("password", MsgBlank)
	case u.Password != "" && len(u.Password) < MinPasswordLength:
		verr.Add("password", TooShort(MinPasswordLength))
	case len(u.Password) > MaxPasswordLength:
		verr.Add("password", TooLong(MaxPasswordLength))
	}

	if u.PasswordConfirmation != "" && u.PasswordConfirmation != u.Password {
		verr.Add("password_confirmation", MsgNoMatch)
	}

	return verr.Err()
}

// NormalizedEmail is the form used for case-insensitive uniqueness checks.
func (u *User) NormalizedEmail() string {
	return NormalizeEmail(u.Email)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClearPassword drops plaintext credentials once they have been hashed.
func (u *User) ClearPassword() {
	u.Password = ""
	u.PasswordConfirmation = ""
}

// Info summarizes the user as "<email> - <created_at> - Token: <auth_token>".
func (u *User) Info() string {
	return fmt.Sprintf("%s - %s - Token: %s",
		u.Email, u.CreatedAt.UTC().Format(InfoTimeLayout), u.AuthToken)
}
