/*
Package dsl builds scene documents from Go code.

It is handy for fixtures, generated scenes and tests where writing the JSON by hand
would be noisy. Every node starts from its variant's defaults, so only the fields that
differ need to be set.

Example usage:

	b := dsl.New()

	b.Add(domain.TagGroup).Name("Props").
		Child(domain.TagEntity).Name("Crate").Set("model", domain.ModelCube).Up().
		Child(domain.TagPointLight).Name("Lamp").Set("position", []float32{0, 3, 0})

	b.Add(domain.TagEntity).Name("Floor").Disabled()

	data, err := b.Build(elements.NewRegistry(), &scene.Context{Resources: catalog})
	// data is a document ready for any ports.DocumentStore.
*/
package dsl
