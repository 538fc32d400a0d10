package runtime

import (
	"context"
	"fmt"
	"time"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/scene"
)

// BrushMode selects when a held mouse button spawns.
type BrushMode int

const (
	// BrushOnce spawns on the press only.
	BrushOnce BrushMode = iota
	// BrushContinuous spawns every tick the button is held, at most once per Interval.
	BrushContinuous
)

// BrushTool is the state of the scatter brush. It lives as long as the UI feature and is
// passed to every BrushTick.
type BrushTool struct {
	Enabled bool
	// Size is the diameter of the circle multiple copies are spread over.
	Size    float32
	Mode    BrushMode
	Density int
	// YOffset is the height of the plane spawned elements are placed on.
	YOffset float32
	// Tag must name an entity variant.
	Tag string
	// Template, when of the same tag, provides the fields every copy starts from.
	Template scene.Element
	Interval time.Duration

	wasMouseDown bool
	lastSpawn    time.Time
}

// NewBrushTool returns a disabled brush placing single standard entities.
func NewBrushTool() *BrushTool {
	return &BrushTool{
		Size:    1,
		Density: 1,
		Tag:     domain.TagEntity,
	}
}

// Ray is a picking ray in world space.
type Ray struct {
	Origin    math32.Vector3
	Direction math32.Vector3
}

// BrushInput is the per-tick input of the brush.
type BrushInput struct {
	MouseDown bool
	Now       time.Time
	Ray       Ray
}

// permit advances the press tracking and reports whether this tick may spawn.
func (b *BrushTool) permit(in BrushInput) bool {
	spawn := false
	switch b.Mode {
	case BrushOnce:
		spawn = in.MouseDown && !b.wasMouseDown
	case BrushContinuous:
		if in.MouseDown && in.Now.Sub(b.lastSpawn) >= b.Interval {
			spawn = true
			b.lastSpawn = in.Now
		}
	}
	b.wasMouseDown = in.MouseDown
	return spawn
}

// hit intersects the ray with the plane y = YOffset.
func (b *BrushTool) hit(r Ray) (math32.Vector3, bool) {
	if r.Direction.Y == 0 {
		return math32.Vector3{}, false
	}
	t := (b.YOffset - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math32.Vector3{}, false
	}
	p := r.Origin.Add(r.Direction.MulScalar(t))
	p.Y = b.YOffset
	return p, true
}

// spots spreads n positions evenly on a circle of the brush diameter around center.
func (b *BrushTool) spots(center math32.Vector3, n int) []math32.Vector3 {
	if n <= 1 {
		return []math32.Vector3{center}
	}
	out := make([]math32.Vector3, n)
	radius := b.Size / 2
	for i := range out {
		angle := 2 * math32.Pi * float32(i) / float32(n)
		out[i] = math32.Vec3(center.X+radius*math32.Cos(angle), b.YOffset, center.Z+radius*math32.Sin(angle))
	}
	return out
}

// BrushTick runs the brush for one frame. When the input permits a spawn and the ray hits
// the brush plane, Density copies of the brush tag are appended to the root list.
func (e *Editor) BrushTick(ctx context.Context, tool *BrushTool, in BrushInput) ([]*scene.Ref, error) {
	if tool == nil || !tool.Enabled {
		return nil, nil
	}
	if !tool.permit(in) {
		return nil, nil
	}
	center, ok := tool.hit(in.Ray)
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, found := e.registry.Lookup(tool.Tag)
	if !found || entry.Category != domain.CategoryEntity {
		err := fmt.Errorf("brush: %q is not an entity tag: %w", tool.Tag, domain.ErrUnknownTypeTag)
		e.finish(ctx, "brush", err)
		return nil, err
	}

	var spawned []*scene.Ref
	for _, pos := range tool.spots(center, tool.Density) {
		el, err := e.spawn(tool, pos)
		if err != nil {
			e.logger.WarnContext(ctx, "brush failed to spawn", "tag", tool.Tag, "error", err)
			e.finish(ctx, "brush", err)
			return spawned, err
		}
		spawned = append(spawned, e.attach(e.tree.Root(), e.tree.Root().Back(), el))
	}
	e.finish(ctx, "brush", nil)
	return spawned, nil
}

func (e *Editor) spawn(tool *BrushTool, pos math32.Vector3) (scene.Element, error) {
	var el scene.Element
	var err error
	if tool.Template != nil && tool.Template.TypeName() == tool.Tag {
		j := tool.Template.IntoJSON()
		if el, err = e.registry.CreateFromJSON(e.sc, tool.Tag, nil, j); err == nil {
			err = el.LoadJSON(j)
		}
	} else {
		el, err = e.registry.CreateDefault(e.sc, tool.Tag, nil)
	}
	if err != nil {
		return nil, err
	}
	el.AsBase().Enabled = true
	if p, ok := scene.AsPositioned(el); ok {
		p.SetPosition(pos)
	}
	return el, nil
}
