// Package elements implements the built-in scene element variants: standard, animated and
// emissive entities, point and directional lights, and groups.
//
// Every variant decodes its fields the same way for loading and for editing. Loading
// ignores keys it does not know; editing rejects them. In both cases a field of the wrong
// shape fails with domain.ErrMalformedJSON and leaves the element untouched.
package elements

// KeyEnabled is the serialized enabled flag. It is read on load but never edited through
// ApplyFields: toggling cascades to descendants and is the editor's job.
const KeyEnabled = "enabled"
