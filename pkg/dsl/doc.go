/*
Package dsl provides a Go DSL for programmatically constructing parley scripts.

It lets developers define rule tables with a fluent builder instead of YAML, JSON or TOML
documents. This is particularly useful for unit testing and for embedding small scripts.

Example usage:

	b := dsl.New("tiny").
		Greeting("How do you do. Please tell me your problem.").
		Fallbacks("Please go on.", "Tell me more.")

	b.Rule("my", 2).
		Pattern("* my *", "Your {1}?", "Why do you say your {1}?").
		Remember("Earlier you said your {1}.")

	b.Rule("mother", 5).
		Pattern("*", "Tell me more about your family.")

	script, err := b.Script()
	// ... pass script to parley.New(parley.WithScript(script))
*/
package dsl
