package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/recipeapi/internal/flagx"
	"github.com/dmitrijs2005/recipeapi/internal/server/config"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipeapi/internal/server/services"
)

var ErrUnknownCommand = errors.New("unknown command")

const usage = `usage: admin <command> [flags]

commands:
  createsuperuser [-email address]   create an administrative account
  migrate                            apply database migrations
`

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Run dispatches args to a subcommand. Server configuration flags (-d and
// friends) and -c/-config are accepted alongside command flags.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cmd, rest := flagx.Subcommand(args)
	switch cmd {
	case "createsuperuser", "migrate":
	case "", "help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	cfg := config.Load(rest)

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if cmd == "migrate" {
		fmt.Fprintln(out, "Migrations applied.")
		return nil
	}

	users := services.NewUserService(db, rm, cfg)
	return NewCommand(users, in, out).CreateSuperuser(ctx, rest)
}
