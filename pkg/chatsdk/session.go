package chatsdk

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
)

// Status is the session's tag.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// State is a snapshot of the session. User is set only when authenticated.
// Err holds the message of the most recent failure and is cleared by the next
// successful transition.
type State struct {
	Status Status
	User   *User
	Err    string
}

func (s State) Authenticated() bool { return s.Status == StatusAuthenticated && s.User != nil }
func (s State) Loading() bool       { return s.Status == StatusLoading }

var (
	// ErrNotAuthenticated is returned by protected calls without a stored token.
	ErrNotAuthenticated = errors.New("chatsdk: not authenticated")
	// ErrSuperseded means a later Start, Login, Register or Logout began
	// while this one was in flight; its result was discarded.
	ErrSuperseded = errors.New("chatsdk: operation superseded")
)

// Session is the client-side session controller. It owns the transitions
// between loading, authenticated and anonymous and is the only writer of the
// token store. Network calls run outside the lock; each transition carries an
// operation number and a result from a superseded operation is dropped.
type Session struct {
	client   *Client
	tokens   TokenStore
	notifier Notifier

	mu      sync.Mutex
	state   State
	op      uint64
	changed chan struct{} // closed and replaced on every transition
	subs    map[int]chan State
	nextSub int
}

type SessionOption func(*Session)

func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewSession creates a session in the loading state. Call Start to resolve
// any stored token.
func NewSession(client *Client, tokens TokenStore, opts ...SessionOption) *Session {
	s := &Session{
		client:   client,
		tokens:   tokens,
		notifier: discardNotifier{},
		state:    State{Status: StatusLoading},
		changed:  make(chan struct{}),
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the session is no longer loading.
func (s *Session) Wait(ctx context.Context) (State, error) {
	for {
		s.mu.Lock()
		st, changed := s.state, s.changed
		s.mu.Unlock()

		if !st.Loading() {
			return st, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}

// Changes subscribes to state transitions. The channel holds only the latest
// state; a slow reader skips intermediate ones. Call cancel to unsubscribe.
func (s *Session) Changes() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Start resolves the stored token. Without one the session becomes anonymous
// immediately; with one it asks the server who it belongs to and becomes
// authenticated, or discards the token and becomes anonymous on any failure.
func (s *Session) Start(ctx context.Context) error {
	op := s.begin(true)

	token, err := s.tokens.Load()
	if err != nil || token == "" {
		s.finish(op, State{Status: StatusAnonymous}, nil)
		return err
	}

	user, err := s.client.Me(ctx, token)
	if err != nil {
		st := State{Status: StatusAnonymous, Err: errorMessage(err)}
		if s.finish(op, st, s.tokens.Clear) {
			s.notify(NoticeError, st.Err)
		}
		return err
	}

	s.finish(op, State{Status: StatusAuthenticated, User: user}, nil)
	return nil
}

// Login authenticates with email and password. The state has been updated by
// the time Login returns.
func (s *Session) Login(ctx context.Context, email, password string) (bool, error) {
	return s.authenticate("Login successful", func() (*AuthResponse, error) {
		return s.client.Login(ctx, LoginRequest{Email: email, Password: password})
	})
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, name, email, password string) (bool, error) {
	return s.authenticate("Registration successful", func() (*AuthResponse, error) {
		return s.client.Register(ctx, RegisterRequest{Name: name, Email: email, Password: password})
	})
}

func (s *Session) authenticate(okMessage string, call func() (*AuthResponse, error)) (bool, error) {
	op := s.begin(true)

	res, err := call()
	if err != nil {
		st := State{Status: StatusAnonymous, Err: errorMessage(err)}
		if s.finish(op, st, nil) {
			s.notify(NoticeError, st.Err)
		}
		return false, err
	}

	user := res.User
	var saveErr error
	committed := s.finish(op, State{Status: StatusAuthenticated, User: &user}, func() error {
		saveErr = s.tokens.Save(res.Token)
		return saveErr
	})
	switch {
	case saveErr != nil:
		s.notify(NoticeError, errorMessage(saveErr))
		return false, saveErr
	case !committed:
		return false, ErrSuperseded
	}

	s.notify(NoticeSuccess, okMessage)
	return true, nil
}

// Logout discards the token and becomes anonymous. It makes no network call
// and supersedes any operation in flight.
func (s *Session) Logout() error {
	op := s.begin(false)
	var clearErr error
	s.finish(op, State{Status: StatusAnonymous}, func() error {
		clearErr = s.tokens.Clear()
		return nil
	})
	s.notify(NoticeSuccess, "You have been logged out")
	return clearErr
}

// UploadDocument uploads r as filename on behalf of the signed-in user.
func (s *Session) UploadDocument(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var out *UploadResponse
	err := s.protected(func(token string) (err error) {
		out, err = s.client.UploadDocument(ctx, token, filename, r)
		return err
	})
	return out, err
}

func (s *Session) ListDocuments(ctx context.Context) ([]Document, error) {
	var out []Document
	err := s.protected(func(token string) (err error) {
		out, err = s.client.ListDocuments(ctx, token)
		return err
	})
	return out, err
}

// Ask sends a chat question about the signed-in user's documents.
func (s *Session) Ask(ctx context.Context, question string) (*QueryResponse, error) {
	var out *QueryResponse
	err := s.protected(func(token string) (err error) {
		out, err = s.client.Query(ctx, token, question)
		return err
	})
	return out, err
}

// protected reads the token from the store for this call only. A 401 from the
// server ends the session unless another operation has started since.
func (s *Session) protected(call func(token string) error) error {
	s.mu.Lock()
	op := s.op
	s.mu.Unlock()

	token, err := s.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	err = call(token)
	if IsUnauthorized(err) {
		st := State{Status: StatusAnonymous, Err: errorMessage(err)}
		if s.finish(op, st, s.tokens.Clear) {
			s.notify(NoticeError, "Session expired, please log in again")
		}
	}
	return err
}

// begin starts a new operation and returns its number. Every earlier
// operation becomes stale.
func (s *Session) begin(loading bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.op++
	if loading {
		s.setLocked(State{Status: StatusLoading})
	}
	return s.op
}

// finish applies st if op is still current. effect runs under the lock first,
// so the token store and the state change together; an effect error aborts
// the transition to anonymous. It reports whether st was applied.
func (s *Session) finish(op uint64, st State, effect func() error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op != s.op {
		return false
	}
	if effect != nil {
		if err := effect(); err != nil {
			s.setLocked(State{Status: StatusAnonymous, Err: errorMessage(err)})
			return false
		}
	}
	s.setLocked(st)
	return true
}

func (s *Session) setLocked(st State) {
	s.state = st
	close(s.changed)
	s.changed = make(chan struct{})

	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// drop the stale value so the newest one fits
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (s *Session) notify(kind NoticeKind, msg string) {
	s.notifier.Notify(Notice{Kind: kind, Message: msg})
}

// errorMessage is the text shown to the user for err.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Unable to reach the server"
	}
	return err.Error()
}
