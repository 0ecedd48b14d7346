/*
Package parley is a deterministic, script-driven conversational responder in the
keyword/decomposition/reassembly tradition of DOCTOR-style chatbots.

A script is a fixed table of keyword rules. For every utterance the engine normalizes
the text, selects the highest ranked keyword (earliest occurrence on ties), matches the
rule's decomposition patterns, reflects pronouns inside the captured fragments and fills
the next reassembly template in a round-robin rotation. Statements flagged as memorable
are queued and surfaced on later turns that match nothing; otherwise a rotating fallback
is returned.

# Determinism

The engine makes no network calls and holds no hidden state. All rotation counters and
the memory queue live in domain.Session, which the caller owns and passes on every turn.
The same script, input and session always produce the same response.

# Usage

	eng, err := parley.New("") // built-in DOCTOR script
	if err != nil {
		log.Fatal(err)
	}

	sess := eng.NewSession("")
	fmt.Println(eng.Greeting())

	reply, err := eng.Respond(ctx, sess, "My mother does not understand me.")
	if err != nil {
		log.Fatal(err) // only a *domain.ConfigurationError can end up here
	}
	fmt.Println(reply)

Scripts can also be read from YAML, JSON or TOML files, from a directory of Markdown
rule documents (via Loam) or built in Go with the pkg/dsl builder. Sessions can be
persisted with the adapters under pkg/adapters and coordinated with pkg/session.
*/
package parley
