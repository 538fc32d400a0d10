/*
Package ports defines the driven ports (interfaces) consumed by the Arbor scene engine.

These interfaces decouple the scene tree from the renderer, the asset pipeline, the
storage backend and the user-facing dialogs, so the same editor runs headless in tests,
behind an HTTP or MCP surface, or inside a windowed host.

# Key Interfaces

  - RenderRegistry: the external render scene; elements insert and remove their entities and lights.
  - ModelLoader / TextureProvider: the resource provider used by element factories.
  - DocumentStore: the primitive file operations the save and load transactions are built from.
  - Dialog: prompts for a path and blocking failure notifications.
*/
package ports
