/*
Package pilotsdk is a Go client for the TODO PILOT HTTP API.

A Client without a token reaches the public endpoints. Signing in returns
a token; WithToken derives a client that sends it as a bearer token:

	c := pilotsdk.NewClient("http://localhost:5000")

	if _, err := c.Signup(ctx, pilotsdk.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "secret"}); err != nil {
		return err
	}

	// token arrives by email
	auth, err := c.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}

	me := c.WithToken(auth.Token)
	todos, err := me.ListTodos(ctx)

Failed calls return *APIError carrying the status code and the server's
error code and message.
*/
package pilotsdk
