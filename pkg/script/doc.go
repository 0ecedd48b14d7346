/*
Package script decodes rule tables from YAML, JSON and TOML documents.

A document looks like this (YAML form):

	name: doctor
	greeting: How do you do. Please tell me your problem.
	memory_cap: 5
	fallbacks:
	  - Please go on.
	  - I see.
	synonyms:
	  family: [mother, father, sister, brother]
	memory:
	  - Earlier you said your {1}.
	rules:
	  - keyword: my
	    rank: 2
	    decompositions:
	      - pattern: "* my *"
	        memory: true
	        reassemblies:
	          - Your {1}?

Patterns are whitespace separated: "*" is a wildcard, "@name" matches any member of
a synonym group, anything else is a literal word. Templates reference captures with
{N}, N starting at 0. A template reading "=keyword" hands the turn to another rule.

Decoding reports syntax problems only. Validate compiles the script and reports every
semantic problem as a *domain.ScriptErrors.
*/
package script
