/*
Package domain contains the core domain models of the parley responder.
It defines the rule table (Rules, Decomposition patterns, Reassembly templates,
Synonym groups) and the per-conversation Session. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Rule: A keyword with a rank and an ordered list of decompositions.
  - Decomposition: A Pattern of literals and wildcards plus the templates used to answer.
  - Template: A reassembly string with {N} placeholders referencing captures.
  - Script: The complete, immutable rule table loaded once per engine.
  - Session: The mutable, conversation-scoped rotation counters and memory queue.
*/
package domain
