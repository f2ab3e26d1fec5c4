// Package billing mounts the subscription HTTP surface: checkout creation,
// the payment-provider webhook, subscription status reads and the
// superadmin-only analytics endpoints.
package billing
