package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const sessionHelp = `Type an idea to analyze it, or one of:
  /list [search]     list history
  /show <id>         display a history item
  /save <id>         toggle the saved flag
  /delete <id>       delete a history item
  /clear             delete unsaved history
  /compare <id>      compare the displayed item with another
  /trend             show the score trend across history
  /share             print a share link for the displayed result
  /autosave [on|off] show or change auto-save
  /help              show this help
  /quit              exit`

func (c *cli) newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Start an interactive validation session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				r := &repl{client: cl, out: cmd.OutOrStdout()}
				return r.run(cmd.Context(), cmd.InOrStdin())
			})
		},
	}
}

// repl 対話セッションの入力ループ
type repl struct {
	client *client
	out    io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, sessionHelp)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if err := r.handle(ctx, line); err != nil {
			fmt.Fprintf(r.out, "Error: %s\n", describeError(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	session := r.client.session
	history := r.client.history

	if !strings.HasPrefix(line, "/") {
		session.SetIdea(line)
		outcome, err := session.Analyze(ctx)
		if outcome == nil {
			return err
		}
		printResult(r.out, outcome.Result, outcome.Cached)
		if id := session.State().ActiveID; id != "" {
			fmt.Fprintf(r.out, "\nRecorded as %s\n", id)
		}
		return err
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/help":
		fmt.Fprintln(r.out, sessionHelp)
	case "/list":
		printGroups(r.out, history.List(arg, r.client.now()))
	case "/show":
		if err := session.Select(arg); err != nil {
			return err
		}
		state := session.State()
		fmt.Fprintf(r.out, "Idea: %s\n\n", state.Idea)
		printResult(r.out, state.Result, false)
	case "/save":
		item, err := session.ToggleSaved(ctx, arg)
		if err != nil {
			return err
		}
		if item.IsSaved {
			fmt.Fprintf(r.out, "Saved %s\n", item.ID)
		} else {
			fmt.Fprintf(r.out, "Unsaved %s\n", item.ID)
		}
	case "/delete":
		if err := session.Delete(ctx, arg); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Deleted %s\n", arg)
	case "/clear":
		removed, err := session.ClearUnsaved(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Removed %d unsaved item(s)\n", removed)
	case "/compare":
		cmp, err := session.Compare(arg)
		if err != nil {
			return err
		}
		printComparison(r.out, cmp)
	case "/trend":
		printTrend(r.out, history.Trend())
	case "/share":
		link, err := session.ShareLink(r.client.publicURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, link)
	case "/autosave":
		switch arg {
		case "on", "off":
			if err := history.SetAutoSave(ctx, arg == "on"); err != nil {
				return err
			}
		case "":
		default:
			fmt.Fprintln(r.out, "Usage: /autosave [on|off]")
			return nil
		}
		fmt.Fprintf(r.out, "Auto-save: %s\n", onOff(history.AutoSave()))
	default:
		fmt.Fprintf(r.out, "Unknown command %s (try /help)\n", command)
	}
	return nil
}
