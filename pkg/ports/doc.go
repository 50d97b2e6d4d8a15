/*
Package ports defines the driven ports (interfaces) for the racketbot engine.

These interfaces decouple the conversation core from external implementations, allowing
the engine to work with various recommendation backends and storage backends.

# Key Interfaces

  - Recommender: performs the single recommendation exchange.
  - StateStore: persists and loads session State.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
