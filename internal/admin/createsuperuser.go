// Package admin implements maintenance commands run outside the HTTP server.
package admin

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/flagx"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

const minPasswordLength = 5

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

type SuperuserCreator interface {
	CreateSuperuser(ctx context.Context, email, password string) (*models.User, error)
}

type Command struct {
	users SuperuserCreator
	in    *bufio.Reader
	out   io.Writer
}

func NewCommand(users SuperuserCreator, in io.Reader, out io.Writer) *Command {
	return &Command{users: users, in: bufio.NewReader(in), out: out}
}

// CreateSuperuser creates an administrative account. The email comes from
// -email or a prompt; the password is always prompted for twice.
func (c *Command) CreateSuperuser(ctx context.Context, args []string) error {
	var email string
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(c.out)
	fs.StringVar(&email, "email", "", "email of the new superuser")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email"})); err != nil {
		return err
	}

	var err error
	if email == "" {
		if email, err = readLine(c.in, c.out, "Email address: "); err != nil {
			return err
		}
	}
	if email == "" {
		return common.ErrorEmailRequired
	}

	password, err := readSecret(c.in, c.out, "Password: ")
	if err != nil {
		return err
	}
	again, err := readSecret(c.in, c.out, "Password (again): ")
	if err != nil {
		return err
	}
	if password != again {
		return ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := c.users.CreateSuperuser(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("user %s: %w", email, err)
		}
		return err
	}

	fmt.Fprintf(c.out, "Superuser %s created successfully.\n", user.Email)
	return nil
}
