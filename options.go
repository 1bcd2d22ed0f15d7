package accesskit

import (
	"log/slog"

	"github.com/dmitrymomot/accesskit/pkg/catalog"
	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/email"
	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// Option overrides a component New would otherwise build from Config.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	claims         credential.ClaimsProvider
	provider       subscription.Provider
	catalogSource  catalog.Source
	emailSender    email.Sender
	inMemoryStores bool
}

// WithLogger replaces the logger built from LogLevel, LogFormat and AppEnv.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClaimsProvider adds custom claims to every access token.
func WithClaimsProvider(p credential.ClaimsProvider) Option {
	return func(o *options) {
		o.claims = p
	}
}

// WithBillingProvider uses p instead of the Paddle adapter.
func WithBillingProvider(p subscription.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithCatalogSource loads plans from src instead of Config.CatalogFile.
func WithCatalogSource(src catalog.Source) Option {
	return func(o *options) {
		o.catalogSource = src
	}
}

// WithEmailSender uses s instead of the sender selected by Config.Email.
func WithEmailSender(s email.Sender) Option {
	return func(o *options) {
		o.emailSender = s
	}
}

// WithInMemoryStores keeps all state in process memory. Postgres and Redis
// are not contacted. Meant for tests and local experiments.
func WithInMemoryStores() Option {
	return func(o *options) {
		o.inMemoryStores = true
	}
}
