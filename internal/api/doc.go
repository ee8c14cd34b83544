// Package api provides HTTP access to the 1secmail provider API. It issues
// the provider's action-based GET requests (and the mailbox deletion form
// POST), applies per-call retry and timeout limits, and validates every
// response body against the shape declared for its action before handing
// typed data back.
//
// # Client Creation
//
// [New] builds a client from functional options. Defaults target the public
// provider endpoints with 2 retries and a 10 second timeout:
//
//	client, err := api.New(api.WithTimeout(5 * time.Second))
//
// # Per-call Options
//
// Every operation accepts [CallOption]s that replace the client-wide limits
// for that call only:
//
//	msgs, err := client.GetMessages(ctx, "demo", "1secmail.com",
//	    api.CallRetries(0), api.CallTimeout(time.Second))
//
// # Retry Behavior
//
// A failed attempt is retried while retries remain when the connection
// failed or the provider answered with one of these statuses:
//
//   - 408 Request Timeout
//   - 413 Payload Too Large
//   - 429 Too Many Requests
//   - 500, 502, 503, 504 server errors
//   - 521, 522, 524 edge errors
//
// The delay doubles with each attempt (1s, 2s, 4s, ...) plus up to 100ms of
// noise. For 413, 429 and 503 a Retry-After header sets the delay instead;
// a call asked to wait more than a minute is not retried.
// The timeout applies to each attempt. Cancelling the context stops both the
// attempt in flight and any pending retry.
//
// # Error Handling
//
// Operations fail with a [*TransportError] when the HTTP exchange failed and
// with a [*ValidationError] when the body does not match the expected shape.
// Invalid JSON and well-formed JSON of the wrong shape fail the same way.
// Out-of-contract arguments fail with a [*RangeError] before any request is
// made. Provider "not found" answers are not errors: [Client.ReadMessage]
// and [Client.Download] return nil.
//
//	if errors.Is(err, api.ErrMalformedResponse) {
//	    // provider format drift
//	}
//
// # Thread Safety
//
// The [Client] type holds no mailbox state and is safe for concurrent use.
package api
