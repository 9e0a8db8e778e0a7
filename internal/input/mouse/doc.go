// Package mouse provides the pointer math shared by the input hosts and the
// native input aggregator.
//
// Hosts report pointer positions in client (pixel) coordinates. The
// aggregator converts them to normalized device coordinates relative to the
// bound element:
//
//	nx := mouse.Normalize(clientX, rect.Left, width)  // -1 at left edge, +1 at right
//	ax := mouse.Smooth(nx - prevX)                     // per-event axis delta
//
// # Buttons
//
// Buttons mirrors the DOM MouseEvent.buttons bitmask: left is bit 0, right
// is bit 1 and middle is bit 2. Note that this differs from
// MouseEvent.button, where middle is 1 and right is 2.
package mouse
