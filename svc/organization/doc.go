// Package organization holds tenant accounts and their subscription state.
//
// Subscription state lives directly on the organization row: the current plan,
// whether it is active, when it expires, and the gateway id of the latest
// payment attempt. Updates are guarded with a version column so the webhook
// handler and the renewal scanner cannot silently overwrite each other.
package organization
