/*
Package ports defines the driven ports (interfaces) for the parley engine.

These interfaces decouple the responder from external implementations, allowing
scripts to come from different sources and sessions to be persisted in various backends.

# Key Interfaces

  - ScriptLoader: Responsible for producing the rule table (embedded YAML, files, Loam, memory).
  - SessionStore: Responsible for persisting and loading conversation Sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
