// Package sanitizer normalises user-supplied identifiers before they are
// compared, stored or logged.
//
// NormalizeEmail is the canonical form used as the unique key for accounts:
// surrounding whitespace is trimmed and the address is lower-cased. No other
// rewriting is applied, so the stored value stays recognisable to the user.
// MaskEmail produces a log-safe rendition of an address.
package sanitizer
