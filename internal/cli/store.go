package cli

import (
	"context"
	"fmt"

	"todo/internal/config"
	"todo/internal/kv"
	"todo/internal/persist"
	"todo/internal/service"
	"todo/internal/tasks"
)

// OpenStore is the default ServiceFactory: it opens the configured slot,
// wraps it in a persistence adapter and returns a ready task store.
func OpenStore(ctx context.Context, cfg *config.Config) (service.Service, error) {
	st := cfg.Settings.Storage
	slot, err := kv.Open(ctx, st.Backend, cfg.StorageDSN())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", st.Backend, err)
	}
	cfg.Logger().Printf("storage: %s %s key=%s", st.Backend, cfg.StorageDSN(), st.Key)

	adapter := persist.New(slot,
		persist.WithKey(st.Key),
		persist.WithWriteTimeout(st.WriteTimeout),
		persist.WithLogger(cfg.Logger()),
	)
	store := tasks.NewStore(adapter,
		tasks.WithDefaultCategory(cfg.Settings.DefaultCategory),
		tasks.WithLogger(cfg.Logger()),
	)
	if err := store.Open(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return store, nil
}
