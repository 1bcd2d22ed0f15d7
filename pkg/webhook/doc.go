// Package webhook signs and verifies webhook payloads with HMAC-SHA256.
//
// The signed message is the decimal unix timestamp, a dot, and the raw
// payload. The signature travels in a single header value of the form
//
//	t=1700000000,v1=5257a869e7ecebeda32affa62cdca3fa51cad7e77a0e56ff536d0ce8e108d8bd
//
// Several v1 entries may be present during secret rotation; any match is
// accepted. Verification compares digests in constant time and rejects
// timestamps outside the configured tolerance.
package webhook
