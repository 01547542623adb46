package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"convene/internal/agent"
	"convene/internal/config"
	"convene/internal/invite"
	"convene/internal/signal"
	"convene/internal/store"
	"convene/internal/store/postgres"
	"convene/internal/store/sqlite"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch {
	case strings.HasPrefix(cfg.Database.DSN, "sqlite://"):
		st, err = sqlite.New(ctx, cfg.Database.DSN)
	default:
		st, err = postgres.New(ctx, cfg.Database.DSN)
	}
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close(ctx)
		return nil, err
	}
	return st, nil
}

// openEngine wires a store, the local identity and the notification
// dispatcher from the project config.
func openEngine(ctx context.Context) (*invite.Engine, store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	keys, err := agent.LoadKeypair(cfg.Identity.Keyfile)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := invite.NewEngine(st, keys)
	engine.SetHook(newDispatcher(cfg, engine).AfterCommit)
	return engine, st, nil
}

func newDispatcher(cfg *config.Config, engine *invite.Engine) *signal.Dispatcher {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	var transport signal.Transport = signal.LogTransport{Log: log}
	if len(cfg.Notify.Webhooks) > 0 {
		endpoints := make(map[agent.ID]string, len(cfg.Notify.Webhooks))
		for id, endpoint := range cfg.Notify.Webhooks {
			endpoints[agent.ID(id)] = endpoint
		}
		transport = signal.NewWebhookTransport(endpoints, cfg.Notify.Timeout())
	}

	return signal.NewDispatcher(engine, transport, log)
}

func printJSON(cmd printer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

type printer interface {
	Println(args ...any)
}
