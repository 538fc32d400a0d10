/*
Package scene implements the scene tree: the polymorphic Element contract, the owning lists
that hold elements, stable references into those lists, and the editor's selection model.

# References

A Ref denotes one element inside one list. Lists are doubly linked, so inserting or removing
any other element never moves an element or invalidates its Ref. A Ref becomes invalid only
when its own element is removed:

	ref := tree.Root().PushBack(light)
	tree.Root().InsertAfter(group, nil) // ref still denotes light
	tree.Root().Remove(ref)             // ref.Valid() == false

# Derived state

Every element derives a world transform from its parent's. Bulk recomputation must run
parents first; UpdateSubtree and Tree.UpdateAll guarantee that order.
*/
package scene
