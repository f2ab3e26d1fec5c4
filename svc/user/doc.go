// Package user holds the people behind the API: members, organization admins
// and platform superadmins, each carrying the contact details the payment
// provider requires and the API token used for request authentication.
package user
