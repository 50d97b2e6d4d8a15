package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/internal/presentation/tui"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/muesli/termenv"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	// SessionID enables persistence; the session is resumed when it exists.
	SessionID string
	// Fresh deletes the stored session before starting.
	Fresh bool
	// JSON switches to JSON lines on Stdin/Stdout.
	JSON bool
	// InProcess answers from the bundled catalogue instead of the HTTP endpoint.
	InProcess bool
	// Stdin defaults to os.Stdin.
	Stdin io.Reader
}

// Run holds one terminal conversation.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	rec, err := a.newRecommender(opts.InProcess)
	if err != nil {
		return err
	}
	engine, err := a.newEngine(rec)
	if err != nil {
		return err
	}

	runnerOpts := []runner.Option{runner.WithLogger(a.Logger)}
	var state *domain.State

	if opts.SessionID != "" {
		sessions, closeStore, err := a.newSessions(storeFile)
		if err != nil {
			return err
		}
		defer closeStore()

		if opts.Fresh {
			if err := sessions.Delete(ctx, opts.SessionID); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
		}
		state, err = sessions.Load(ctx, opts.SessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			state = nil
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}

		quiet := opts.JSON
		if state != nil {
			a.Logger.Info("Session Resumed", "session_id", opts.SessionID, "phase", state.Phase)
			if !quiet {
				printSystemMessage(a.Stdout, "Resuming session '%s'...", opts.SessionID)
			}
		} else if !quiet {
			printSystemMessage(a.Stdout, "Session '%s' active.", opts.SessionID)
		}
		runnerOpts = append(runnerOpts,
			runner.WithSessionID(opts.SessionID),
			runner.WithStore(sessions.Store()),
		)
	}

	runnerOpts = append(runnerOpts, runner.WithInputHandler(a.ioHandler(opts)))

	if state != nil && state.Terminal() && !opts.JSON {
		printSystemMessage(a.Stdout, "Session '%s' already finished (%s). Use --fresh to start over.", opts.SessionID, state.Phase)
	}

	final, runErr := runner.NewRunner(runnerOpts...).Run(ctx, engine, state)
	if ctx.Err() != nil && runErr == nil {
		runErr = ctx.Err()
	}
	if !opts.JSON && final != nil {
		a.logCompletion(final, runErr)
	}
	return handleExecutionError(runErr)
}

// ioHandler picks JSON lines or the text handler. The text handler colours cards and
// renders markdown only when Stdout is a terminal.
func (a *App) ioHandler(opts RunOptions) runner.IOHandler {
	san := a.sanitizer()
	if opts.JSON {
		h := runner.NewJSONHandler(opts.Stdin, a.Stdout)
		h.Sanitizer = san
		return h
	}

	profile := termenv.NewOutput(a.Stdout).ColorProfile()
	handlerOpts := []runner.TextHandlerOption{
		runner.WithTextHandlerFormatter(tui.CardFormatter(profile)),
	}
	if f, ok := a.Stdout.(*os.File); ok && tui.IsTerminal(f) {
		tui.PrintBanner(a.Stdout)
		fmt.Fprintf(a.Stdout, "racketbot %s. Type 'exit' to quit.\n\n", strings.TrimSpace(racketbot.Version))
		if render, err := tui.NewRenderer(); err == nil {
			handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
		} else {
			a.Logger.Warn("Markdown renderer unavailable", "err", err)
		}
	}

	h := runner.NewTextHandler(opts.Stdin, a.Stdout, handlerOpts...)
	h.Sanitizer = san
	return h
}

func (a *App) logCompletion(state *domain.State, err error) {
	switch {
	case err == nil && state.Terminal():
		printSystemMessage(a.Stdout, "Finished (%s).", state.Phase)
	case errors.Is(err, context.Canceled):
		printSystemMessage(a.Stdout, "Interrupted while %s.", state.Phase)
	case err == nil || errors.Is(err, io.EOF):
		printSystemMessage(a.Stdout, "Left while %s.", state.Phase)
	}
}
