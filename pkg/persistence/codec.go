package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/scene"
)

// Diagnostic describes one node that could not be captured or restored losslessly.
type Diagnostic struct {
	// Kind is the domain.Classify name of Err.
	Kind string
	// Path locates the node by sibling indices from the document root, e.g. "2/0".
	Path  string
	Label string
	Err   error
}

// Report summarizes a Marshal or Unmarshal pass.
type Report struct {
	// Elements counts the nodes written or created.
	Elements    int
	Diagnostics []Diagnostic
}

// Codec converts between a tree of elements and the scene file format: a JSON array of
// labelled objects, each container carrying its children under "children".
type Codec struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// NewCodec creates a codec resolving labels through reg.
func NewCodec(reg *registry.Registry, opts ...Option) *Codec {
	c := &Codec{registry: reg, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Marshal serializes every element of root. Nodes marked with an error are still written;
// each one adds a diagnostic.
func (c *Codec) Marshal(root *scene.List) ([]byte, *Report, error) {
	report := &Report{}
	doc := c.encodeList(root, "", report)
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, report, fmt.Errorf("failed to encode scene: %w: %w", domain.ErrMalformedJSON, err)
	}
	return data, report, nil
}

// Encode returns the labelled objects of root without rendering them to bytes.
func (c *Codec) Encode(root *scene.List) ([]map[string]any, *Report) {
	report := &Report{}
	return c.encodeList(root, "", report), report
}

func (c *Codec) encodeList(l *scene.List, prefix string, report *Report) []map[string]any {
	out := make([]map[string]any, 0, l.Len())
	i := 0
	for r := range l.All() {
		out = append(out, c.encodeElement(r.Element(), childPath(prefix, i), report))
		i++
	}
	return out
}

func (c *Codec) encodeElement(e scene.Element, path string, report *Report) map[string]any {
	j := e.IntoJSON()
	j[domain.KeyLabel] = e.TypeName()
	e.StoreJSON(j)
	report.Elements++

	if msg, ok := j[domain.KeyError]; ok {
		err := fmt.Errorf("%v: %w", msg, domain.ErrMarkedError)
		c.diagnose(report, path, e.TypeName(), err, "element saved with an error and will not load back")
	}

	if children := e.Children(); children != nil {
		j[domain.KeyChildren] = c.encodeList(children, path, report)
	}
	return j
}

// Unmarshal rebuilds the document in data under root, registering every enabled node with
// rs, then recomputes every world transform parent-first.
//
// Nodes marked with an error and nodes with unknown labels are skipped with their subtree
// and reported. A document that is not an array of labelled objects, or a node its factory
// rejects, fails the whole call; root then holds a partial tree the caller must discard.
func (c *Codec) Unmarshal(sc *scene.Context, data []byte, root *scene.List, rs ports.RenderRegistry) (*Report, error) {
	var doc []any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &Report{}, fmt.Errorf("failed to parse scene: %w: %w", domain.ErrMalformedJSON, err)
	}
	if doc == nil {
		return &Report{}, fmt.Errorf("failed to parse scene: document root is not an array: %w", domain.ErrMalformedJSON)
	}
	return c.Decode(sc, doc, root, rs)
}

// Decode is Unmarshal over an already parsed document.
func (c *Codec) Decode(sc *scene.Context, doc []any, root *scene.List, rs ports.RenderRegistry) (*Report, error) {
	report := &Report{}
	if err := c.decodeList(sc, doc, root, "", rs, report); err != nil {
		return report, err
	}
	for r := range root.All() {
		scene.UpdateSubtree(r)
	}
	return report, nil
}

func (c *Codec) decodeList(sc *scene.Context, items []any, l *scene.List, prefix string, rs ports.RenderRegistry, report *Report) error {
	for i, item := range items {
		path := childPath(prefix, i)
		j, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("node %s is not an object: %w", path, domain.ErrMalformedJSON)
		}
		if err := c.decodeElement(sc, j, l, path, rs, report); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) decodeElement(sc *scene.Context, j map[string]any, l *scene.List, path string, rs ports.RenderRegistry, report *Report) error {
	label, _ := j[domain.KeyLabel].(string)

	if msg, ok := j[domain.KeyError]; ok {
		c.diagnose(report, path, label, fmt.Errorf("%v: %w", msg, domain.ErrMarkedError), "skipping element marked with an error")
		return nil
	}
	if _, ok := j[domain.KeyLabel].(string); !ok {
		return fmt.Errorf("node %s has no label: %w", path, domain.ErrMalformedJSON)
	}

	e, err := c.registry.CreateFromJSON(sc, label, l.Owner(), j)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTypeTag) {
			c.diagnose(report, path, label, err, "skipping element with unknown label")
			return nil
		}
		return fmt.Errorf("node %s (%s): %w", path, label, err)
	}
	if err := e.LoadJSON(j); err != nil {
		return fmt.Errorf("node %s (%s): %w", path, label, err)
	}

	if e.AsBase().Enabled {
		e.AddToRenderScene(rs)
	}
	ref := l.PushBack(e)
	report.Elements++

	raw, ok := j[domain.KeyChildren]
	if !ok {
		return nil
	}
	children, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("node %s: children must be an array: %w", path, domain.ErrMalformedJSON)
	}
	if len(children) > 0 && e.Children() == nil {
		return fmt.Errorf("node %s: %s cannot hold children: %w", path, label, domain.ErrMalformedJSON)
	}
	if e.Children() == nil {
		return nil
	}
	return c.decodeList(sc, children, ref.Element().Children(), path, rs, report)
}

func (c *Codec) diagnose(report *Report, path, label string, err error, msg string) {
	report.Diagnostics = append(report.Diagnostics, Diagnostic{
		Kind:  domain.Classify(err),
		Path:  path,
		Label: label,
		Err:   err,
	})
	c.logger.Warn(msg, "label", label, "path", path, "error", err)
}

func childPath(prefix string, i int) string {
	if prefix == "" {
		return strconv.Itoa(i)
	}
	return prefix + "/" + strconv.Itoa(i)
}
