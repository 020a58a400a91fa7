package serializers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/auth"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

const minPasswordLength = 5

var errPasswordBytes = errors.New("ensure this field has no more than 72 bytes")

// checkPasswordBytes counts bytes, not runes: bcrypt only looks at the first 72.
func checkPasswordBytes(value interface{}) error {
	var p string
	switch v := value.(type) {
	case string:
		p = v
	case *string:
		if v == nil {
			return nil
		}
		p = *v
	}
	if len(p) > auth.MaxPasswordBytes {
		return errPasswordBytes
	}
	return nil
}

// User is the public form of an account. The password is write-only.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUser(u *models.User) User {
	return User{Email: u.Email, Name: u.Name}
}

type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (p UserCreate) Validate() error {
	return common.FromValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(1, maxNameLength), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(minPasswordLength, 0), validation.By(checkPasswordBytes)),
		validation.Field(&p.Name, validation.Length(0, maxNameLength)),
	))
}

// UserUpdate is the payload of the manage-own-account endpoint.
type UserUpdate struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (p UserUpdate) Validate() error {
	return common.FromValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(0, maxNameLength)),
		validation.Field(&p.Password, validation.NilOrNotEmpty, validation.Length(minPasswordLength, 0), validation.By(checkPasswordBytes)),
	))
}

// AuthToken carries the credentials exchanged for a token. The password is
// taken verbatim, whitespace included.
type AuthToken struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p AuthToken) Validate() error {
	return common.FromValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	))
}

type Token struct {
	Token string `json:"token"`
}
