package domain

// Type tags. They label elements in scene files and key the type registry,
// so they must never change once files exist in the wild.
const (
	TagEntity           = "Entity"
	TagAnimatedEntity   = "Animated Entity"
	TagEmissiveEntity   = "Emissive Entity"
	TagPointLight       = "Point Light"
	TagDirectionalLight = "Directional Light"
	TagGroup            = "Group"
)

// Category groups type tags into the editor's creation menus.
type Category string

const (
	CategoryEntity Category = "Entity"
	CategoryLight  Category = "Light"
	CategoryGroup  Category = "Group"
)

// Reserved keys of a labelled element object.
const (
	KeyLabel    = "label"
	KeyChildren = "children"
	KeyError    = "error"
)

// Default asset names used by the built-in variants.
const (
	ModelCube        = "cube.obj"
	ModelSphere      = "sphere.obj"
	ModelDoublePlane = "double_plane.obj"
)

// DisabledSuffix is appended to the display name of disabled elements.
const DisabledSuffix = " [Disabled]"
