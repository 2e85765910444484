package chatsdk

// NoticeKind distinguishes success toasts from failure toasts.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, user-facing message about a session transition.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier receives notices. Notify is called outside the session's lock and
// must not block for long.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
