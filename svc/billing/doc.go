// Package billing implements the subscription lifecycle: checkout creation
// through the PIX gateway, webhook-driven plan activation, the daily renewal
// scan, lifecycle notifications and the reporting read path.
//
// The organization row is the live projection of the current subscription;
// the subscriptions table is an append-style ledger of every purchase and
// renewal attempt. Webhooks correlate the two through the payment id.
package billing
