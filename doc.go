// Package accesskit assembles the credential and subscription engine.
//
// A Kit bundles a credential.Manager for password accounts, email
// verification, password reset and JWT sessions with a subscription.Service
// that keeps a local subscription ledger in sync with a billing provider.
//
// Basic usage:
//
//	cfg, err := accesskit.LoadConfig()
//	if err != nil {
//		return err
//	}
//	kit, err := accesskit.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer kit.Close()
//
//	res, err := kit.Credentials.Register(ctx, email, password)
//
// By default users, tokens and subscriptions live in Postgres (see cmd/migrate
// for the schema) and Paddle is the billing provider. Setting
// REFRESH_TOKEN_STORE=redis moves refresh tokens to Redis. WithInMemoryStores
// and WithBillingProvider replace the backends for tests.
package accesskit
