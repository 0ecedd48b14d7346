/*
Package session implements session management and persistence orchestration.

The engine itself is stateless: every turn needs the caller's domain.Session. Manager
turns that into a locked load-answer-save cycle over any ports.SessionStore, so HTTP,
MCP and console hosts can serve one conversation from several goroutines or replicas
without losing rotation counters or memory entries.
*/
package session
