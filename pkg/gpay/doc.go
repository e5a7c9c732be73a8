// Package gpay provides a client for the GPay online wallet API.
//
// Every call is a signed POST. The client proves the request comes from the
// merchant and checks that the response really comes from GPay and was not
// altered on the way.
//
// # Authentication
//
// Each request carries four headers:
//   - Authorization: Bearer <API key>
//   - Accept-Language: the response language
//   - X-Signature-Salt: 32 fresh random bytes, base64 encoded
//   - X-Signature-Hash: base64 HMAC-SHA256 over salt + password + the
//     canonical form of the request fields, keyed by the secret key
//
// GPay signs its responses the same way with a salt of its own. The client
// recomputes that signature over the response fields of the operation and
// rejects the response when the headers are missing or the hash differs.
// See package signing for the canonical form.
//
// # Basic Usage
//
//	client, err := gpay.NewClient(gpay.Credentials{
//	    APIKey:    "your-api-key",
//	    SecretKey: "your-secret-key",
//	    Password:  "your-password",
//	}, gpay.Staging)
//
//	balance, err := client.GetBalance(ctx)
//
//	result, err := client.SendMoney(ctx, "25.00", "W-1001", "rent", "INV-7")
//
// # Error Handling
//
// HTTP failures are returned as *HTTPError. Responses that fail verification
// are returned as *VerificationError wrapping ErrMissingSignature or
// ErrSignatureMismatch; the response data is never returned with them:
//
//	_, err := client.GetBalance(ctx)
//	switch {
//	case errors.Is(err, gpay.ErrSignatureMismatch):
//	    // forged or tampered response, or a wrong secret
//	case gpay.IsIntegrityError(err):
//	    // unsigned or unreadable response
//	}
package gpay
