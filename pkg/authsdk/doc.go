/*
Package authsdk is the Go client for the auth service.

# SDKClient vs Session

  - SDKClient calls the public endpoints: login, refresh, registration and
    the health probes.
  - Session carries a token pair for one device and calls the protected
    endpoints, refreshing the access token shortly before it expires.

	client := authsdk.NewSDKClient("https://auth.example.com")
	client.Fingerprint = "laptop-7f3a"

	session, err := client.Login(ctx, "alice", "correct horse")
	if err != nil {
		return err
	}

	profile, err := session.Profile(ctx)

	// Admin only
	err = session.AssignRole(ctx, "bob", "editor")

	// Ends this device's session and denylists the access token.
	err = session.Logout(ctx)

# Device fingerprints

Every session is bound to a device fingerprint. SDKClient.Fingerprint is
sent in the X-Device-Fingerprint header on login. When it is empty the
server derives one from the User-Agent and Accept-Language headers.

# Errors

Non-2xx responses are returned as *httpx.Error carrying the HTTP status
and the error code from the body:

	var apiErr *httpx.Error
	if errors.As(err, &apiErr) && apiErr.Code == httpx.ErrorCodeInvalidGrant {
		// wrong login or password
	}

# Thread Safety

Sessions are safe for concurrent use. A refresh rotates the stored refresh
token, so only one goroutine performs it at a time.
*/
package authsdk
