/*
Package chatsdk is the client side of DocChat: an HTTP client for the API, a
durable token store, the session controller and the access gate.

# Client

Client is a thin, stateless wrapper over the HTTP API. Every call takes the
token explicitly and failures come back as *APIError carrying the server's
status and message:

	client := chatsdk.NewClient("http://localhost:5001")
	res, err := client.Login(ctx, chatsdk.LoginRequest{Email: email, Password: password})
	if errors.Is(err, chatsdk.ErrInvalidCredentials) {
		// wrong email or password, the server does not say which
	}

# Session

Session owns the client-side state machine over loading, authenticated and
anonymous. It is the only writer of the TokenStore, which holds the token
under the key "auth_token":

	session := chatsdk.NewSession(client, chatsdk.NewFileTokenStore(path),
		chatsdk.WithNotifier(chatsdk.NotifierFunc(func(n chatsdk.Notice) {
			fmt.Println(n.Message)
		})),
	)
	_ = session.Start(ctx)          // resolve a stored token, if any
	ok, err := session.Login(ctx, email, password)
	session.Logout()                // local only, no network call

Start, Login, Register and Logout each begin a new operation. A result that
arrives after a later operation began is discarded, so a login that resolves
after a logout never stores its token.

Protected calls (UploadDocument, ListDocuments, Ask) read the token from the
store on each call. A 401 answer ends the session.

# Gate

Gate turns a State into a Decision: wait while loading, redirect when
anonymous, render when authenticated. Guard blocks until the session has
resolved so protected content is never shown during loading.
*/
package chatsdk
