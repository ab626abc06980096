package core

import (
	"context"

	"github.com/anoixa/image-vault/cache"
	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/storage"
)

func checkDatabaseHealth(factory *database.Factory) string {
	if factory == nil {
		return "not initialized"
	}
	if err := factory.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	return "ok"
}

func checkStorageHealth(provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}

	ctx := context.Background()
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}

	return "ok"
}
