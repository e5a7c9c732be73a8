// Package signing implements the GPay message signature scheme.
//
// A message is a flat set of scalar fields (Params). Its signature is
//
//	base64(HMAC-SHA256(secretKey, salt + password + Canonicalize(params)))
//
// where salt is 32 random bytes, base64 encoded, chosen fresh by the sender of
// every message. Requests and responses are signed the same way, so the same
// Engine serves the client and the local sandbox server.
//
// Canonicalize sorts keys by byte order and renders values with a fixed
// table: null as "", booleans as "true"/"false", integers in decimal and
// strings verbatim. Value keeps the scalar kind explicit so false, 0 and ""
// never collide.
package signing
