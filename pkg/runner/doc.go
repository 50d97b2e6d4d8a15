/*
Package runner implements the terminal conversation loop for the racketbot engine.

It bridges the pure conversation engine and the outside world: it prints newly
appended transcript messages, reads answers through a pluggable IOHandler,
executes the recommendation effect and persists the state after every step.

# Key Components

  - Runner: the loop. Stops at a terminal phase, EOF, "exit"/"quit" or cancellation.
  - TextHandler: interactive terminal IO with a background input pump.
  - JSONHandler: JSON-Lines events for scripted hosts.
  - Sanitizer: size limit (RACKETBOT_MAX_INPUT_SIZE), UTF-8 check, control stripping.

# Usage

	r := runner.NewRunner(
		runner.WithSessionID("user-1"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	final, err := r.Run(ctx, engine, nil)
*/
package runner
