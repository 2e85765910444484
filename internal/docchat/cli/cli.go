// Package cli implements docchatctl, a terminal client that keeps a session
// between invocations and talks to the DocChat API through chatsdk.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

const (
	DefaultServer = "http://localhost:5001"
	ServerEnv     = "DOCCHAT_URL"
	SessionEnv    = "DOCCHAT_SESSION"

	loginHint = "docchatctl login"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// App holds the I/O and session of one invocation.
type App struct {
	Out, Err io.Writer

	client  *chatsdk.Client
	session *chatsdk.Session
	gate    chatsdk.Gate
	prompt  *prompter
	logger  *slog.Logger
}

type command struct {
	usage string
	run   func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"register":  {"register [-name NAME] [-email EMAIL]", runRegister},
	"login":     {"login [-email EMAIL]", runLogin},
	"logout":    {"logout", runLogout},
	"whoami":    {"whoami", runWhoami},
	"upload":    {"upload FILE", runUpload},
	"documents": {"documents", runDocuments},
	"ask":       {"ask QUESTION...", runAsk},
	"health":    {"health", runHealth},
}

var commandOrder = []string{"register", "login", "logout", "whoami", "upload", "documents", "ask", "health"}

// Main parses args (without the program name), runs one command and returns
// the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docchatctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr(ServerEnv, DefaultServer), "API base URL (env "+ServerEnv+")")
	sessionPath := fs.String("session", envOr(SessionEnv, defaultSessionPath()), "session file (env "+SessionEnv+")")
	verbose := fs.Bool("v", false, "debug logging to stderr")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(fs)
		return exitUsage
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(fs)
		return exitUsage
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := slogx.New(slogx.Config{
		Service: "docchatctl",
		Level:   level,
		Format:  "text",
		Output:  stderr,
	})

	a := New(*server, chatsdk.NewFileTokenStore(*sessionPath), stdin, stdout, stderr)
	a.logger = logger
	logger.Debug("command", "name", name, "server", *server, "session", *sessionPath)

	if err := cmd.run(ctx, a, rest); err != nil {
		var usageErr usageError
		switch {
		case errors.As(err, &usageErr):
			fmt.Fprintf(stderr, "usage: docchatctl %s\n", cmd.usage)
			return exitUsage
		case errors.Is(err, chatsdk.ErrLoginRequired):
			fmt.Fprintf(stderr, "not logged in, run %s\n", loginHint)
		case errors.Is(err, errReported):
		default:
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitError
	}
	return exitOK
}

// New builds an App for server, keeping its token in tokens. Session notices
// go to stderr.
func New(server string, tokens chatsdk.TokenStore, stdin io.Reader, stdout, stderr io.Writer) *App {
	client := chatsdk.NewClient(server)
	a := &App{
		Out:    stdout,
		Err:    stderr,
		client: client,
		gate:   chatsdk.Gate{LoginPath: loginHint},
		prompt: newPrompter(stdin, stderr),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	a.session = chatsdk.NewSession(client, tokens, chatsdk.WithNotifier(chatsdk.NotifierFunc(a.notice)))
	return a
}

func (a *App) notice(n chatsdk.Notice) {
	if n.Kind == chatsdk.NoticeError {
		fmt.Fprintf(a.Err, "error: %s\n", n.Message)
		return
	}
	fmt.Fprintln(a.Err, n.Message)
}

// protected resolves the stored session and runs fn only for a signed-in
// user.
func (a *App) protected(ctx context.Context, fn func(chatsdk.User) error) error {
	if err := a.session.Start(ctx); err != nil {
		a.logger.Debug("stored session rejected", "error", err)
	}
	return a.gate.Guard(ctx, a.session, fn)
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// errReported marks failures the session notifier already printed.
var errReported = errors.New("reported")

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: docchatctl [flags] COMMAND [args]")
	fmt.Fprintln(out, "\ncommands:")
	for _, name := range commandOrder {
		fmt.Fprintf(out, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".docchat", "session.json")
	}
	return filepath.Join(dir, "docchat", "session.json")
}
