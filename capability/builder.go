package capability

// HandlerBuilder assembles the bindings of a Handler before it is frozen and
// shared. It has value semantics: every setter returns a new builder with
// one field replaced, so partially configured builders can be forked freely.
//
// Once frozen with Build, bindings change only through the Handler's
// Replace* operations.
type HandlerBuilder struct {
	Blobstore        Blobstore
	IncomingHTTP     IncomingHTTP
	OutgoingHTTP     OutgoingHTTP
	KeyValueAtomic   KeyValueAtomic
	KeyValueEventual KeyValueEventual
	Messaging        Messaging
}

// WithBlobstore returns a copy of the builder with the Blobstore provider set.
func (b HandlerBuilder) WithBlobstore(p Blobstore) HandlerBuilder {
	b.Blobstore = p
	return b
}

// WithIncomingHTTP returns a copy of the builder with the IncomingHTTP
// provider set.
func (b HandlerBuilder) WithIncomingHTTP(p IncomingHTTP) HandlerBuilder {
	b.IncomingHTTP = p
	return b
}

// WithOutgoingHTTP returns a copy of the builder with the OutgoingHTTP
// provider set.
func (b HandlerBuilder) WithOutgoingHTTP(p OutgoingHTTP) HandlerBuilder {
	b.OutgoingHTTP = p
	return b
}

// WithKeyValueAtomic returns a copy of the builder with the KeyValueAtomic
// provider set.
func (b HandlerBuilder) WithKeyValueAtomic(p KeyValueAtomic) HandlerBuilder {
	b.KeyValueAtomic = p
	return b
}

// WithKeyValueEventual returns a copy of the builder with the
// KeyValueEventual provider set.
func (b HandlerBuilder) WithKeyValueEventual(p KeyValueEventual) HandlerBuilder {
	b.KeyValueEventual = p
	return b
}

// WithMessaging returns a copy of the builder with the Messaging provider set.
func (b HandlerBuilder) WithMessaging(p Messaging) HandlerBuilder {
	b.Messaging = p
	return b
}

// Build freezes the builder into a Handler. The freeze is one-way; use
// Builder to snapshot a live Handler back into builder form.
func (b HandlerBuilder) Build(opts ...HandlerOption) *Handler {
	h := NewHandler(opts...)
	if b.Blobstore != nil {
		h.blobstore.store(b.Blobstore, true)
	}
	if b.IncomingHTTP != nil {
		h.incomingHTTP.store(b.IncomingHTTP, true)
	}
	if b.OutgoingHTTP != nil {
		h.outgoingHTTP.store(b.OutgoingHTTP, true)
	}
	if b.KeyValueAtomic != nil {
		h.keyValueAtomic.store(b.KeyValueAtomic, true)
	}
	if b.KeyValueEventual != nil {
		h.keyValueEventual.store(b.KeyValueEventual, true)
	}
	if b.Messaging != nil {
		h.messaging.store(b.Messaging, true)
	}
	return h
}

// Builder snapshots the Handler's current bindings into a HandlerBuilder.
// Rebinds racing with the snapshot may or may not be observed; each field is
// read atomically.
func (h *Handler) Builder() HandlerBuilder {
	var b HandlerBuilder
	if p, ok := h.blobstore.load(); ok {
		b.Blobstore = p
	}
	if p, ok := h.incomingHTTP.load(); ok {
		b.IncomingHTTP = p
	}
	if p, ok := h.outgoingHTTP.load(); ok {
		b.OutgoingHTTP = p
	}
	if p, ok := h.keyValueAtomic.load(); ok {
		b.KeyValueAtomic = p
	}
	if p, ok := h.keyValueEventual.load(); ok {
		b.KeyValueEventual = p
	}
	if p, ok := h.messaging.load(); ok {
		b.Messaging = p
	}
	return b
}
