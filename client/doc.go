// Package client executes typed endpoint descriptors against a REST API.
//
// # Building a Client
//
// Use [Build] with a base URL and functional options:
//
//	c, err := client.Build("https://api.example.com/v1",
//		client.WithTimeout(10*time.Second),
//		client.WithAuthentication(client.NewCredential(client.LocationHeader, "X-Api-Key", key)),
//		client.WithLogger(logging.Slog(slog.Default())),
//	)
//
// # Making Requests
//
// Declare an endpoint once with its response type, then execute it:
//
//	getUser, err := endpoint.New[User](endpoint.MethodGet, "/users/1")
//	user, err := client.Do(ctx, c, getUser)
//
// Each call is identified by its fingerprint (path, method, header keys and
// query names). While a call is in flight, any other call with the same
// fingerprint fails immediately with [ErrDuplicateRequest].
//
// # Calling Conventions
//
// [Go] is the single asynchronous primitive: it returns a [Future] that
// resolves exactly once. [Do] blocks on it, [Callback] hands the result to a
// function, and package [github.com/adamwoolhether/apiclient/client/stream]
// offers reactive-style wrappers. All of them share the same classification
// and error taxonomy:
//
//	f := client.Go(ctx, c, getUser)
//	// ... do other work ...
//	user, err := f.Wait()
//
// # Errors
//
// Every failure is one of [ErrDuplicateRequest], [*BuildError],
// [*TransportError], [*DecodingError], [*EmptyResponseError],
// [*UnexpectedStatusError] or [ErrUnknownResponse]. Use [errors.Is] with the
// sentinels or [errors.As] with the typed errors to inspect them.
//
// # Rotating Credentials
//
// The [Credential] passed to [WithAuthentication] may be updated at any time;
// the new value is used by the next request built:
//
//	cred.Update(refreshedToken)
package client
