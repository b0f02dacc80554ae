// Package manage implements the administrative commands of the recipe
// server: schema migration and superuser creation.
package manage

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPasswordMismatch = errors.New("passwords didn't match")
	ErrPasswordTooShort = fmt.Errorf("password must contain at least %d characters", common.MinPasswordLength)
	ErrBlankPassword    = errors.New("blank passwords aren't allowed")
	ErrInvalidEmail     = errors.New("enter a valid email address")
)

var validate = validator.New()

type Migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

type SuperuserCreator interface {
	CreateSuperuser(ctx context.Context, email, password string) (*models.User, error)
}

type App struct {
	db       *sql.DB
	migrator Migrator
	users    SuperuserCreator
	in       *bufio.Reader
	out      io.Writer
}

func NewApp(db *sql.DB, m Migrator, us SuperuserCreator, in io.Reader, out io.Writer) *App {
	return &App{db: db, migrator: m, users: us, in: bufio.NewReader(in), out: out}
}

// Run dispatches to the command called name with its own args.
func (a *App) Run(ctx context.Context, name string, args []string) error {
	switch name {
	case "migrate":
		return a.Migrate(ctx)
	case "createsuperuser":
		return a.CreateSuperuser(ctx, args)
	case "", "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: manage [-d dsn] [-c config.json] <command> [options]")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  migrate                    apply database migrations")
	fmt.Fprintln(a.out, "  createsuperuser [-email e] create an admin account")
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.migrator.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied.")
	return nil
}

// CreateSuperuser asks for the missing email and for the password twice,
// then stores an account with staff and superuser rights.
func (a *App) CreateSuperuser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "email address of the superuser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		v, err := GetSimpleText(a.in, "Email address:", a.out)
		if err != nil {
			return err
		}
		*email = v
	}
	// Blank input is left to the account service, which reports it.
	if e := strings.TrimSpace(*email); e != "" && validate.Var(e, "email") != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, e)
	}

	pw, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	again, err := GetPassword(a.out, "Password (again): ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	switch {
	case !bytes.Equal(pw, again):
		return ErrPasswordMismatch
	case len(bytes.TrimSpace(pw)) == 0:
		return ErrBlankPassword
	case len([]rune(string(pw))) < common.MinPasswordLength:
		return ErrPasswordTooShort
	}

	u, err := a.users.CreateSuperuser(ctx, *email, string(pw))
	if err != nil {
		var fe *common.FieldError
		switch {
		case errors.As(err, &fe):
			return fmt.Errorf("%s: %s", fe.Field, fe.Message)
		case errors.Is(err, common.ErrorAlreadyExists):
			return errors.New("error: that email is already taken")
		}
		return err
	}

	fmt.Fprintf(a.out, "Superuser %s created successfully.\n", u.Email)
	return nil
}
