package resume

import (
	"context"
	"sync"
)

// ScopedStyleProps are the inline properties the export overrides on the live
// preview node.
var ScopedStyleProps = []string{"transform", "width", "max-width", "min-height"}

// ExportStyle is applied to the live node for the duration of an export.
func ExportStyle() Style {
	return Style{
		"transform":  "none",
		"width":      "210mm",
		"max-width":  "210mm",
		"min-height": "297mm",
	}
}

// styleScope overrides inline styles on a node and restores the saved values
// exactly once.
type styleScope struct {
	node  Node
	saved Style
	once  sync.Once
	err   error
}

func applyStyleScope(ctx context.Context, node Node, override Style) (*styleScope, error) {
	props := make([]string, 0, len(override))
	for _, prop := range ScopedStyleProps {
		if _, ok := override[prop]; ok {
			props = append(props, prop)
		}
	}
	saved, err := node.Style(ctx, props...)
	if err != nil {
		return nil, err
	}
	scope := &styleScope{node: node, saved: Style{}}
	for _, prop := range props {
		scope.saved[prop] = saved[prop]
	}
	if err := node.SetStyle(ctx, override); err != nil {
		// Partial writes are possible; put the snapshot back.
		_ = scope.Restore(ctx)
		return nil, err
	}
	return scope, nil
}

// Restore writes the saved values back. It runs even when ctx is done.
func (s *styleScope) Restore(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.err = s.node.SetStyle(context.WithoutCancel(ctx), s.saved)
	})
	return s.err
}
