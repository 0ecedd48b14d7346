package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/adapters/sqlite"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

const defaultSQLitePath = ".parley/sessions.db"

func (a *app) engine(hooks domain.LifecycleHooks) (*parley.Engine, error) {
	eng, err := parley.New(a.cfg.Script,
		parley.WithLogger(a.logger),
		parley.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize parley: %w", err)
	}
	return eng, nil
}

// openStore builds the configured session store wrapped in the privacy
// middleware. The returned closer releases backend connections.
func (a *app) openStore(ctx context.Context) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	sc := a.cfg.Store
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
		closer = func() error { return nil }
	)

	switch sc.Kind {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(sc.Path)
	case config.StoreRedis:
		var opts []redis.Option
		if sc.TTL > 0 {
			opts = append(opts, redis.WithTTL(sc.TTL))
		}
		prefix := redis.DefaultPrefix
		if sc.Prefix != "" {
			prefix = sc.Prefix
			opts = append(opts, redis.WithPrefix(prefix))
		}
		rs := redis.New(sc.RedisAddr, "", 0, opts...)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", sc.RedisAddr, err)
		}
		store, closer = rs, rs.Close
		locker = redis.NewLocker(rs.Client(), prefix+"lock:")
	case config.StoreSQLite:
		path := sc.Path
		if path == "" {
			path = defaultSQLitePath
		}
		db, err := sqlite.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, nil, err
		}
		store, closer = db, db.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", sc.Kind)
	}

	var mws []middleware.Middleware
	if sc.RedactPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	key, err := sc.Key()
	if err != nil {
		return nil, nil, nil, errors.Join(err, closer())
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	a.logger.Debug("session store ready", "kind", sc.Kind, "redact_pii", sc.RedactPII, "encrypted", key != nil)
	return middleware.Chain(store, mws...), locker, closer, nil
}

func (a *app) sessions(store ports.SessionStore, locker ports.DistributedLocker) *session.Manager {
	opts := []session.Option{session.WithLogger(a.logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	if a.cfg.Store.LockTTL > 0 {
		opts = append(opts, session.WithLockTTL(a.cfg.Store.LockTTL))
	}
	return session.NewManager(store, opts...)
}
