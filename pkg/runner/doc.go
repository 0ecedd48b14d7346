/*
Package runner implements the interactive conversation loop for a parley engine.

The runner reads utterances through a pluggable IOHandler, answers them through a
session.Manager so every turn is persisted, and ends on an exit word, EOF or an interrupt.

# Key Components

  - Runner: The loop. Greets new sessions, resumes existing ones and handles /commands.
  - TextHandler: Line-oriented terminal IO with input sanitizing.
  - JSONHandler: JSON-Lines IO for scripted hosts.

# Usage

	r := runner.NewRunner(
		runner.WithSessions(session.NewManager(store)),
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}
*/
package runner
