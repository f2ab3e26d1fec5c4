// Package response carries the HTTP error vocabulary and JSON rendering
// helpers shared by all API handlers. Unknown errors always render as a
// generic 500 body.
package response
