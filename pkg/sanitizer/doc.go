// Package sanitizer provides input normalization for user-supplied data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Invalid input is handled gracefully, typically by
// returning an empty string rather than an error.
//
// Phone normalization is the load-bearing piece: the phone number is the login
// identity, so registration, PIN request and PIN validation must all normalize
// it identically or lookups silently fail.
package sanitizer
