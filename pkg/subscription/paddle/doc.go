// Package paddle implements subscription.Provider on top of the Paddle Billing API.
//
// Checkouts are Paddle transactions created from catalog prices. The local
// user id travels in the transaction custom data as user_id and comes back on
// subscription webhooks, where it is used to resolve users that have no
// billing customer linked yet.
//
// Cancellation is scheduled for the next billing period. Resuming removes the
// scheduled change. Plan changes are not supported by this adapter.
//
// Webhook signatures use the Paddle-Signature header and are checked with the
// SDK verifier.
package paddle
