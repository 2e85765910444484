package chatsdk

import (
	"context"
	"errors"
	"fmt"
)

// Action is what a protected view should do for a given session state.
type Action int

const (
	// ActionWait shows a waiting indicator and navigates nowhere.
	ActionWait Action = iota
	ActionRedirect
	ActionRender
)

type Decision struct {
	Action     Action
	RedirectTo string // set for ActionRedirect
	User       *User  // set for ActionRender
}

// ErrLoginRequired is returned by Guard for an anonymous session.
var ErrLoginRequired = errors.New("login required")

// DefaultLoginPath is where anonymous visitors are sent.
const DefaultLoginPath = "/login"

// Gate decides whether protected content may be shown.
type Gate struct {
	LoginPath string
}

// Evaluate maps a state to a decision. It never renders while loading.
func (g Gate) Evaluate(st State) Decision {
	switch {
	case st.Loading():
		return Decision{Action: ActionWait}
	case st.Authenticated():
		return Decision{Action: ActionRender, User: st.User}
	default:
		return Decision{Action: ActionRedirect, RedirectTo: g.loginPath()}
	}
}

// Guard waits for the session to resolve and then calls render for an
// authenticated user. An anonymous session yields ErrLoginRequired and render
// is not called.
func (g Gate) Guard(ctx context.Context, s *Session, render func(User) error) error {
	st, err := s.Wait(ctx)
	if err != nil {
		return err
	}

	d := g.Evaluate(st)
	if d.Action != ActionRender {
		return fmt.Errorf("%w: redirect to %s", ErrLoginRequired, d.RedirectTo)
	}
	return render(*d.User)
}

func (g Gate) loginPath() string {
	if g.LoginPath == "" {
		return DefaultLoginPath
	}
	return g.LoginPath
}
