// Package subscription keeps a local subscription ledger in step with an
// external billing provider.
//
// The Service gates checkout against the plan catalog, forwards cancel,
// resume and plan changes to the provider, grants one trial per user and
// applies provider webhooks. Webhook application is idempotent on the
// provider subscription id, so redelivered or reordered events are safe:
//
//   - a duplicate subscription.created is a no-op;
//   - updates and cancellations for unknown subscriptions are dropped;
//   - updates only touch fields present in the event.
//
// Each user owns at most one Subscription row. Rows are never deleted.
// CancelAtPeriodEnd is the only field written locally ahead of the provider;
// stores persist it through a dedicated call so a webhook update cannot
// clobber it.
//
// Providers implement Provider. Resume and plan changes are optional
// capabilities probed at call time through ResumableProvider and
// UpdatableProvider.
package subscription
