// Package vdom defines the declared element tree: Element values built by
// the el package, the closed Tag set and the EventKind set the bridge
// forwards.
//
// Elements are plain values. Nothing here knows about identities, views or
// surfaces; the render package assigns identities when a tree is filled.
package vdom
