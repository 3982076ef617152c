package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

var errChatExit = errors.New("chat exit")

// chatREPL keeps one conversation across turns.
type chatREPL struct {
	app          *App
	out          io.Writer
	conversation []llm.Message
}

func newChatCmd(app *App) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "chat [MESSAGE]",
		Short: "Talk to the project-management assistant",
		Long: "With a MESSAGE, ask once and print the reply. Without one, start an\n" +
			"interactive session; type /help for its commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Assistant == nil {
				return fmt.Errorf("the assistant is not configured")
			}
			ctx := commandContext(cmd)
			r := &chatREPL{app: app, out: cmd.OutOrStdout()}
			if resume {
				if err := r.resume(ctx); err != nil {
					return err
				}
			}

			if len(args) > 0 {
				return r.send(ctx, strings.Join(args, " "))
			}
			if app.interactive() {
				return r.runReadline(ctx)
			}
			return r.runLines(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the stored chat history")

	return cmd
}

// resume seeds the conversation with stored exchanges, oldest first.
func (r *chatREPL) resume(ctx context.Context) error {
	if r.app.History == nil {
		return nil
	}
	entries, err := r.app.History.List(ctx, r.app.userID(), domain.FeatureChat)
	if err != nil {
		return err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		r.conversation = append(r.conversation,
			llm.Message{Role: llm.RoleUser, Content: entries[i].Input},
			llm.Message{Role: llm.RoleAssistant, Content: entries[i].Output},
		)
	}
	return nil
}

func (r *chatREPL) runReadline(ctx context.Context) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	historyFile := ""
	if r.app.Config != nil && r.app.Config.Dir != "" {
		historyFile = filepath.Join(r.app.Config.Dir, "chat_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("you> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.printWelcome()
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}
		if err := r.handle(ctx, line); err != nil {
			if errors.Is(err, errChatExit) {
				return nil
			}
			r.printError(err)
		}
	}
}

// runLines drives the session from a plain reader, one message per line.
func (r *chatREPL) runLines(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := r.handle(ctx, sc.Text()); err != nil {
			if errors.Is(err, errChatExit) {
				return nil
			}
			r.printError(err)
		}
	}
	return sc.Err()
}

func (r *chatREPL) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "/exit", "/quit":
		return errChatExit
	case "/clear":
		r.conversation = nil
		fmt.Fprintln(r.out, formatter.Dim("Conversation cleared."))
		return nil
	case "/history":
		for _, m := range r.conversation {
			fmt.Fprintf(r.out, "%s %s\n", r.speaker(m.Role), m.Content)
		}
		return nil
	case "/help":
		r.printHelp()
		return nil
	}
	if strings.HasPrefix(line, "/") {
		return fmt.Errorf("unknown command %s (try /help)", line)
	}
	return r.send(ctx, line)
}

func (r *chatREPL) send(ctx context.Context, message string) error {
	reply, updated, err := r.app.Assistant.Chat(ctx, r.app.userID(), r.conversation, message)
	if err != nil {
		return err
	}
	r.conversation = updated
	fmt.Fprintf(r.out, "%s %s\n", r.speaker(llm.RoleAssistant), reply)
	return nil
}

func (r *chatREPL) speaker(role llm.Role) string {
	if role == llm.RoleAssistant {
		return color.New(color.FgGreen, color.Bold).Sprint("planpilot>")
	}
	return color.New(color.FgCyan).Sprint("you>")
}

func (r *chatREPL) printWelcome() {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "%s %s\n\n", bold("planpilot assistant"), formatter.Dim("(/help for commands, Ctrl+D to exit)"))
}

func (r *chatREPL) printHelp() {
	fmt.Fprintln(r.out, "/clear    start a new conversation")
	fmt.Fprintln(r.out, "/history  print the conversation so far")
	fmt.Fprintln(r.out, "/exit     leave the session")
}

func (r *chatREPL) printError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
}

func newTranslateCmd(app *App) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "translate [TEXT]",
		Short: "Translate text with the configured AI provider",
		Long:  "Translate TEXT, or stdin when no TEXT is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Assistant == nil {
				return fmt.Errorf("the assistant is not configured")
			}
			ctx := commandContext(cmd)

			text := strings.Join(args, " ")
			if text == "" {
				data, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				text = string(data)
			}
			if lang == "" && app.Settings != nil {
				st, err := app.Settings.Get(ctx, app.userID())
				if err != nil {
					return err
				}
				lang = st.Language
			}

			out, err := app.Assistant.Translate(ctx, app.userID(), text, lang)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "to", "t", "", "Target language (default: the language in settings)")

	return cmd
}
