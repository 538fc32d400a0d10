/*
Package domain contains the shared vocabulary of the Arbor scene engine.

It defines the error taxonomy used by construction and persistence, the stable type tags
that label elements in scene files, and the lifecycle events emitted by the editor.
This package is kept free of I/O and of the scene tree itself, so adapters can depend on it
without pulling in the editor.

# Key Entities

  - Errors: ConstructionError, UnknownTypeTag, MalformedJSON, MarkedError, IOFailure.
  - Tags: the registry keys and file labels of each element variant.
  - LifecycleHooks: callbacks fired on commands, creations, saves, loads and commits.
*/
package domain
