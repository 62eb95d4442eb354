// Package protocol implements the messages exchanged with a rendering
// surface.
//
// Inbound, the surface sends one JSON object per user interaction:
//
//	{"id": "button1", "gen": 7, "kind": "click", "data": {"x": "10", "y": "4"}}
//
// "gen" is the generation the element was rendered with; it lets the
// dispatcher drop events for elements that were replaced in the meantime.
// An element event without "gen" is malformed. View-level events
// (close-request, resize, move) use the id "@view" and carry no "gen".
//
// Outbound, the bridge sends Instructions. Socket surfaces receive them as
// JSON; surfaces that evaluate JavaScript receive Instruction.Script().
package protocol
