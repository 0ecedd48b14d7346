package parley_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/dsl"
)

// ExampleNew_dsl demonstrates building a script in Go and holding a short conversation.
func ExampleNew_dsl() {
	b := dsl.New("tiny").
		Fallbacks("Please go on.", "I see.").
		MemoryTemplates("Earlier you said your {1}.")

	b.Rule("my", 2).
		Pattern("* my *", "Your {1}?").
		Remember()
	b.Rule("sorry", 0).
		Pattern("*", "Please don't apologize.", "Apologies are not necessary.")

	s, err := b.Script()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := parley.New("", parley.WithScript(s))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess := eng.NewSession("example")
	for _, in := range []string{"My dog hates me.", "Sorry.", "Sorry!", "Whatever.", "Whatever."} {
		out, err := eng.Respond(ctx, sess, in)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	}

	// Output:
	// Your dog hates you?
	// Please don't apologize.
	// Apologies are not necessary.
	// Earlier you said your dog hates you.
	// Please go on.
}

// ExampleNew_doctor uses the built-in DOCTOR script.
func ExampleNew_doctor() {
	eng, err := parley.New("")
	if err != nil {
		log.Fatal(err)
	}

	sess := eng.NewSession("doctor")
	fmt.Println(eng.Greeting())

	out, _ := eng.Respond(context.Background(), sess, "I am unhappy.")
	fmt.Println(out)

	// Output:
	// How do you do. Please tell me your problem.
	// I am sorry to hear that you are depressed.
}
