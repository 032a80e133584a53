// Package sanitizer normalizes free-form input before validation and storage.
//
// All functions are idempotent and never fail: malformed input comes back
// cleaned as far as possible and validation decides whether it is usable.
package sanitizer
