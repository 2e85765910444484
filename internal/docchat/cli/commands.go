package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
)

func newFlags(a *App, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func runRegister(ctx context.Context, a *App, args []string) error {
	fs := newFlags(a, "register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError{"register takes no arguments"}
	}

	var err error
	if *name, err = a.prompt.valueOr(*name, "Name"); err != nil {
		return err
	}
	if *email, err = a.prompt.valueOr(*email, "Email"); err != nil {
		return err
	}
	password, err := a.prompt.password("Password")
	if err != nil {
		return err
	}

	if ok, err := a.session.Register(ctx, *name, *email, password); !ok {
		return reported(err)
	}
	return printUser(a.Out, *a.session.State().User)
}

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := newFlags(a, "login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError{"login takes no arguments"}
	}

	var err error
	if *email, err = a.prompt.valueOr(*email, "Email"); err != nil {
		return err
	}
	password, err := a.prompt.password("Password")
	if err != nil {
		return err
	}

	if ok, err := a.session.Login(ctx, *email, password); !ok {
		return reported(err)
	}
	return printUser(a.Out, *a.session.State().User)
}

func runLogout(_ context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return usageError{"logout takes no arguments"}
	}
	return a.session.Logout()
}

func runWhoami(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return usageError{"whoami takes no arguments"}
	}
	return a.protected(ctx, func(u chatsdk.User) error {
		return printUser(a.Out, u)
	})
}

func runUpload(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return usageError{"upload takes one file"}
	}
	path := args[0]

	return a.protected(ctx, func(chatsdk.User) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := a.session.UploadDocument(ctx, filepath.Base(path), f)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, res.Message)
		return printDocuments(a.Out, []chatsdk.Document{res.Document})
	})
}

func runDocuments(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return usageError{"documents takes no arguments"}
	}
	return a.protected(ctx, func(chatsdk.User) error {
		docs, err := a.session.ListDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Fprintln(a.Out, "no documents")
			return nil
		}
		return printDocuments(a.Out, docs)
	})
}

func runAsk(ctx context.Context, a *App, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return usageError{"ask needs a question"}
	}
	return a.protected(ctx, func(chatsdk.User) error {
		res, err := a.session.Ask(ctx, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, res.Answer)
		if res.Source != "" {
			fmt.Fprintf(a.Out, "\nsource: %s\n", res.Source)
		}
		return nil
	})
}

func runHealth(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return usageError{"health takes no arguments"}
	}

	api, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "api:       %s (%s)\n", api.Status, api.Message)

	ready, err := a.client.GetReadiness(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "readiness: %s, version %s, up %s\n", ready.Status, ready.Version, ready.Uptime)
	if ready.Checks != nil {
		fmt.Fprintf(a.Out, "database:  %s\n", ready.Checks.Database)
		fmt.Fprintf(a.Out, "documents: %s\n", ready.Checks.DocumentService)
	}
	return nil
}

// reported marks a login or registration failure the session notifier has
// already printed.
func reported(err error) error {
	if err == nil {
		return errReported
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

func printUser(w io.Writer, u chatsdk.User) error {
	_, err := fmt.Fprintf(w, "%s <%s> id=%s\n", u.Name, u.Email, u.ID)
	return err
}

func printDocuments(w io.Writer, docs []chatsdk.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Type, d.Size, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
