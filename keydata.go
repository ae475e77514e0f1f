// Package keydata provides a typed, extensible property registry for game
// data holders.
//
// keydata models holder properties as strongly typed keys, validated values
// and serializable key bundles:
//   - Keys identify one typed property each, optionally with inclusive bounds
//   - Values wrap a key and payload, in immutable and mutable flavours
//   - Bundles group related keys into one serializable unit
//   - Processors attach bundles and single values to holder types
//   - The Registry dispatches reads, writes and removals to the most
//     specific processor registered for a holder
//
// # Quick Start
//
// Build a registry during startup:
//
//	reg := keydata.RegisterHealth(keydata.NewBuilder()).
//	    Observe(func(ev keydata.ChangeEvent) {
//	        slog.Info("keydata: change", "subject", ev.Subject, "op", ev.Op)
//	    }).
//	    Init()
//
//	rec := keydata.NewRecord()
//	res := keydata.Offer(reg, rec, keydata.KeyHealth, 18.5)
//	if !res.Success() {
//	    // res.Kind() explains the rejection, e.g. ResultOutOfBounds.
//	}
//
// # Bundles
//
// Bundles are plain Go structs with an explicit field table:
//
//	type HealthData struct {
//	    Current float64
//	    Max     float64
//	}
//
//	hd, _ := keydata.Read[*HealthData](reg, rec)
//	hd.Current = 12
//	reg.Apply(rec, hd)
//
// Writes are all or nothing: Apply validates every field against its key's
// bounds before the first write, so a failed transaction leaves the holder
// untouched.
//
// # Serialization
//
// Bundles serialize to ordered Documents that round-trip through YAML:
//
//	doc := hd.Serialize()
//	data, _ := doc.EncodeYAML()
//
// Request-time failures are reported through TransactionResult values.
// Panics are reserved for registration errors surfaced by Builder.Init.
package keydata

// Version is the keydata version.
const Version = "1.0.0"
