package keydata

// ChangeOp identifies the kind of mutation a ChangeEvent describes.
type ChangeOp uint8

const (
	// OpApply is a whole-bundle write.
	OpApply ChangeOp = iota

	// OpOffer is a single-value write.
	OpOffer

	// OpRemove is a bundle or value removal.
	OpRemove
)

// String returns a readable name for the operation.
func (op ChangeOp) String() string {
	switch op {
	case OpApply:
		return "APPLY"
	case OpOffer:
		return "OFFER"
	case OpRemove:
		return "REMOVE"
	}
	return "UNKNOWN"
}

// ChangeEvent describes a successful mutation routed through a Registry.
// Observers receive events synchronously after the holder was modified;
// failed mutations never produce events.
type ChangeEvent struct {
	// Holder is the object that was modified.
	Holder any

	// Subject is the bundle name or key identifier that changed.
	Subject string

	// Op is the kind of mutation.
	Op ChangeOp

	// Result carries the field transitions the mutation performed.
	Result TransactionResult
}

// Observer receives change events. Observers are registered at startup via
// Builder.Observe and must not block: they run on the mutating caller's
// goroutine.
type Observer func(ChangeEvent)

// notify dispatches an event to every registered observer.
func (r *Registry) notify(ev ChangeEvent) {
	for _, obs := range r.observers {
		obs(ev)
	}
}
