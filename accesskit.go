package accesskit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/catalog"
	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/email"
	"github.com/dmitrymomot/accesskit/pkg/jwt"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/pg"
	"github.com/dmitrymomot/accesskit/pkg/redis"
	"github.com/dmitrymomot/accesskit/pkg/store/memory"
	"github.com/dmitrymomot/accesskit/pkg/store/postgres"
	redisstore "github.com/dmitrymomot/accesskit/pkg/store/redis"
	"github.com/dmitrymomot/accesskit/pkg/subscription"
	"github.com/dmitrymomot/accesskit/pkg/subscription/paddle"
)

// Kit is the assembled credential and subscription engine.
type Kit struct {
	Credentials   credential.Manager
	Subscriptions subscription.Service
	Catalog       *catalog.Catalog
	Logger        *slog.Logger

	checks  map[string]func(context.Context) error
	closers []func()
}

// New builds every component from cfg. Postgres migrations are not applied
// here; run cmd/migrate or pg.Migrate first.
func New(ctx context.Context, cfg Config, opts ...Option) (_ *Kit, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		if log, err = newLogger(cfg); err != nil {
			return nil, err
		}
	}

	k := &Kit{
		Logger: log,
		checks: make(map[string]func(context.Context) error),
	}
	defer func() {
		if err != nil {
			k.Close()
		}
	}()

	src := o.catalogSource
	if src == nil {
		src = catalog.NewYAMLFileSource(cfg.CatalogFile)
	}
	if k.Catalog, err = catalog.New(ctx, src); err != nil {
		return nil, fmt.Errorf("failed to load plan catalog: %w", err)
	}

	var (
		users    credential.UserStorage
		refresh  credential.RefreshTokenStorage
		subStore subscription.Store
	)
	if o.inMemoryStores {
		creds := memory.NewCredentialStore()
		users, refresh, subStore = creds, creds, memory.NewSubscriptionStore()
	} else {
		if users, refresh, subStore, err = k.connectStores(ctx, cfg); err != nil {
			return nil, err
		}
	}

	sender := o.emailSender
	if sender == nil {
		if sender, err = email.NewSender(cfg.Email, email.WithDevLogger(log)); err != nil {
			return nil, err
		}
	}
	mailer := email.NewAuthMailer(sender,
		email.WithProductName(cfg.ProductName),
		email.WithMailerLogger(log),
		email.WithLinkLifetimes(
			credential.ParseTTL(cfg.Credential.VerificationTokenTTL, credential.DefaultVerificationTokenTTL),
			credential.ParseTTL(cfg.Credential.PasswordResetTokenTTL, credential.DefaultPasswordResetTTL),
		),
	)

	issuer, err := jwt.NewFromString(cfg.Credential.SigningKey, jwt.WithIssuer(cfg.Credential.Issuer))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	credOpts := []credential.Option{
		credential.WithConfig(cfg.Credential),
		credential.WithLogger(log.With(logger.Component("credential"))),
	}
	if o.claims != nil {
		credOpts = append(credOpts, credential.WithClaimsProvider(o.claims))
	}
	k.Credentials = credential.NewService(users, refresh, issuer, mailer, credOpts...)

	provider := o.provider
	if provider == nil {
		if provider, err = paddle.New(cfg.Paddle, paddle.WithLogger(log)); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}
	k.Subscriptions = subscription.NewService(k.Catalog, provider, subStore,
		subscription.WithConfig(cfg.Subscription),
		subscription.WithUserResolver(userResolver(users)),
		subscription.WithLogger(log.With(logger.Component("subscription"))),
	)

	log.InfoContext(ctx, "accesskit ready",
		slog.Int("plans", len(k.Catalog.Plans())),
		slog.Bool("in_memory", o.inMemoryStores),
	)
	return k, nil
}

func (k *Kit) connectStores(ctx context.Context, cfg Config) (credential.UserStorage, credential.RefreshTokenStorage, subscription.Store, error) {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	k.closers = append(k.closers, pool.Close)
	k.checks["postgres"] = pg.Healthcheck(pool)

	creds := postgres.NewCredentialStore(pool)
	subs := postgres.NewSubscriptionStore(pool)

	switch cfg.RefreshTokenStore {
	case RefreshStorePostgres, "":
		return creds, creds, subs, nil
	case RefreshStoreRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		k.closers = append(k.closers, func() { _ = client.Close() })
		k.checks["redis"] = redis.Healthcheck(client)
		return creds, redisstore.NewRefreshTokenStore(client), subs, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown refresh token store %q", ErrInvalidConfig, cfg.RefreshTokenStore)
	}
}

// userResolver accepts checkout user ids only for registered accounts.
func userResolver(users credential.UserStorage) subscription.UserResolver {
	return subscription.UserResolverFunc(func(ctx context.Context, id uuid.UUID) (bool, error) {
		if _, err := users.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, credential.ErrUserNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
}

func newLogger(cfg Config) (*slog.Logger, error) {
	opts := []logger.Option{logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName)}
	if cfg.LogLevel != "" {
		lvl, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		opts = append(opts, logger.WithLevel(lvl))
	}
	switch f := logger.Format(cfg.LogFormat); f {
	case "":
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(f))
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, cfg.LogFormat)
	}
	return logger.New(opts...), nil
}

// Healthcheck probes every connected backend. It returns nil when running on
// in-memory stores.
func (k *Kit) Healthcheck(ctx context.Context) error {
	names := make([]string, 0, len(k.checks))
	for name := range k.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := k.checks[name](ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrHealthcheckFailed}, errs...)...)
	}
	return nil
}

// Close releases backend connections in reverse order of creation.
func (k *Kit) Close() {
	for i := len(k.closers) - 1; i >= 0; i-- {
		k.closers[i]()
	}
	k.closers = nil
}
