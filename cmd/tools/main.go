// Command tools runs maintenance tasks against the console database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"cockpit-server/internal/config"
	"cockpit-server/internal/db"
	"cockpit-server/internal/migrate"
	"cockpit-server/internal/modules/perf/repository"
	"cockpit-server/internal/modules/perf/types"
)

const usage = `usage: %s <command>
  migrate                      apply pending schema migrations
  calculations [kind] [limit]  print recent calculations as JSON
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()

	switch args[0] {
	case "migrate":
		if err := migrate.Run(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		_, err := fmt.Fprintln(out, "migrations applied")
		return err
	case "calculations":
		kind, limit, err := parseListArgs(args[1:])
		if err != nil {
			return err
		}
		if err := migrate.Run(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		calcs, err := repository.NewRepository(conn).ListRecent(ctx, kind, limit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(calcs)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func parseListArgs(args []string) (types.Kind, int, error) {
	var kind types.Kind
	limit := 20
	if len(args) > 0 && args[0] != "all" {
		switch k := types.Kind(args[0]); k {
		case types.KindTakeoff, types.KindTrim, types.KindSetN1:
			kind = k
		default:
			return "", 0, fmt.Errorf("unknown kind %q: %w", args[0], errUsage)
		}
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("limit must be a positive integer: %w", errUsage)
		}
		limit = n
	}
	return kind, limit, nil
}
