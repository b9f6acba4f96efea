// Package hash provides deterministic one-way digests for short-lived secrets.
//
// Digests are unsalted so the same input always produces the same output,
// which lets a store look a secret up by its digest. Use HMAC-SHA256 with a
// server secret when the input space is small enough to enumerate offline.
package hash
