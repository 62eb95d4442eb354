package el

import "github.com/joestar-dev/joestar/pkg/vdom"

// Type aliases for the vdom primitives used by the DSL.
type Element = vdom.Element
type Tag = vdom.Tag
type EventKind = vdom.EventKind
