/*
Package arbor is the document and scene-graph core of a small 3D scene editor.

A scene is an ordered tree of polymorphic elements (static, animated and emissive
entities, point and directional lights, groups). The editor keeps the tree, a
multi-selection and an external render registry consistent: every enabled element is
registered exactly once, and every command either completes or leaves all three as
they were.

# Usage

	ctx := context.Background()
	editor, err := arbor.Open(ctx, arbor.WithStore(file.New("./scenes")))
	if err != nil {
		log.Fatal(err)
	}

	// New elements go into the selected group, after the selected element,
	// or at the end of the scene.
	light, _ := editor.Create(ctx, domain.TagPointLight)
	_ = editor.Edit(ctx, light, map[string]any{"position": []any{0, 3, 0}})

	if err := editor.SaveAs(ctx, "lobby.json"); err != nil {
		log.Fatal(err)
	}

Saving is a transaction: the previous document is parked at a backup path, the new one
written, and the backup dropped. On failure the original document is restored. Loading
replaces the tree only when the whole document was read; unknown or broken elements are
skipped and reported as diagnostics.

# Extending

Stores, resource providers, dialogs and render registries are ports (see pkg/ports) with
adapters in pkg/adapters: memory, file, redis and sqlite stores, an MQTT render-sync
bridge, and HTTP and MCP surfaces. Lifecycle hooks feed metrics, audit logs and the
render-sync bridge (see pkg/observability).
*/
package arbor
