// Package processing turns raw meter readings into the values pushed to the
// store.
//
// Each push target is described by a Parameter that binds a store device idx
// to a meter register and a processing mode. Overwrite pushes the reading
// unchanged. Subtract pushes the reading minus a comparison device's current
// value, which turns an absolute counter into a delta against a baseline.
// Add pushes the target device's stored value plus the growth of the reading
// over a comparison device, which lets one meter continue a counter another
// meter started.
//
// Parameters use the compact form "idx:register:mode[:compareIdx]" on the
// command line and in config files:
//
//	params, err := processing.ParseParameters([]string{"370:0x003C:0", "371:0x0050:1:372"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Modes that need a comparison device reject parameters without one at parse
// time, so a processing run never discovers a missing operand halfway
// through.
package processing
