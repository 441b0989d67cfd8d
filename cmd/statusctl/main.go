// Command statusctl inspects and edits statuses directly in the configured
// storage backend, bypassing the HTTP API and its shared secret.
//
//	statusctl list
//	statusctl latest
//	statusctl get <id>
//	statusctl create <title> <body>
//	statusctl update <id> <title> <body>
//	statusctl delete <id>
//
// Storage is selected with the same environment as the service
// (STORAGE_BACKEND, REDIS_*, SQLITE_PATH, MONGODB_*, MINIO_*).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/statusboard/statusboard/internal/backend"
	"github.com/statusboard/statusboard/internal/config"
	"github.com/statusboard/statusboard/internal/status"
	"github.com/statusboard/statusboard/pkg/logger"
)

const usage = `usage: statusctl <command> [args]

commands:
  list                         all statuses, newest first
  latest                       most recent status
  get <id>                     one status
  create <title> <body>        add a status
  update <id> <title> <body>   replace title and body
  delete <id>                  remove a status`

var errUsage = errors.New(usage)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	// the limiter's Redis connection is irrelevant here
	cfg.RateLimit.Enabled = false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("open %s storage: %v", cfg.Storage.Backend, err)
	}
	store := status.NewStore(be.KV, status.WithVersionPrefix(cfg.Status.KeyPrefix))

	err = run(ctx, store, os.Args[1:], os.Stdout)
	_ = be.Close()
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, store *status.Store, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	var (
		v   any
		err error
	)
	switch {
	case cmd == "list" && len(args) == 0:
		v, err = store.List(ctx)
	case cmd == "latest" && len(args) == 0:
		var st *status.Status
		st, err = store.Latest(ctx)
		if err == nil && st == nil {
			err = errors.New("no statuses found")
		}
		v = st
	case cmd == "get" && len(args) == 1:
		var st *status.Status
		st, err = store.Get(ctx, args[0])
		if err == nil && st == nil {
			err = fmt.Errorf("status %s: %w", args[0], status.ErrNotFound)
		}
		v = st
	case cmd == "create" && len(args) == 2:
		v, err = store.Create(ctx, status.Param{Title: args[0], Body: args[1]})
	case cmd == "update" && len(args) == 3:
		var prev *status.Status
		prev, err = store.Update(ctx, args[0], status.Param{Title: args[1], Body: args[2]})
		if err == nil {
			v, err = store.Get(ctx, prev.ID)
		}
	case cmd == "delete" && len(args) == 1:
		v, err = store.Delete(ctx, args[0])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
