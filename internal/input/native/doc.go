// Package native implements the keyboard/mouse input aggregator that a
// native core polls once per input-sampling tick.
//
// A Device is bound to one element of a host document. The host's event
// dispatch delivers raw key and pointer events to the device, which folds
// them into a small state record:
//
//	dev, err := native.Bind(doc, "#surface")
//	if err != nil {
//	    return err
//	}
//	defer dev.Unbind()
//
//	state, err := dev.Poll() // once per tick
//
// # Binding
//
// At most one device is bound per process. Binding a second device while
// one is live fails with ErrAlreadyBound; unbinding or polling a device that
// is not bound fails with ErrNotBound.
//
// # Polling
//
// Poll drains the device. The mouse axis accumulators are reset to zero and
// every held key that was reported is latched, so a second poll with no
// intervening events reports zero deltas and no keys. A key is reported
// again only after it is released and pressed.
//
// # Pointer Events
//
// Pointer positions are normalized to [-1, 1] over the bound element. With
// pointer lock engaged, positions integrate the events' movement deltas
// instead of using their client coordinates. The X and Y axes hold the
// smoothed delta of the most recent pointer event only; deltas of earlier
// events since the last poll are overwritten.
//
// # Thread Safety
//
// Device is safe for concurrent use. Hosts may deliver events from their
// own goroutine while the core polls from another.
package native
