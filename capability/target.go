package capability

import (
	"bytes"
	"fmt"

	"github.com/nats-io/nkeys"
)

// TargetInterface identifies the interface a call is addressed to, as a
// namespace/package/interface triple.
type TargetInterface struct {
	Namespace string
	Package   string
	Interface string
}

// Well-known target interfaces.
var (
	TargetWasiBlobstoreBlobstore     = TargetInterface{"wasi", "blobstore", "blobstore"}
	TargetWasiHTTPOutgoingHandler    = TargetInterface{"wasi", "http", "outgoing-handler"}
	TargetWasiKeyValueAtomic         = TargetInterface{"wasi", "keyvalue", "atomic"}
	TargetWasiKeyValueEventual       = TargetInterface{"wasi", "keyvalue", "eventual"}
	TargetWasiLoggingLogging         = TargetInterface{"wasi", "logging", "logging"}
	TargetWasmcloudMessagingConsumer = TargetInterface{"wasmcloud", "messaging", "consumer"}
)

func (t TargetInterface) String() string {
	return fmt.Sprintf("%s:%s/%s", t.Namespace, t.Package, t.Interface)
}

// ActorIdentifier names an actor either by a symbolic call alias or by a
// cryptographic public-key identity. Identifiers of different variants are
// never equal.
type ActorIdentifier struct {
	alias string

	// key identity: prefix and decoded key material
	keyPrefix nkeys.PrefixByte
	keyRaw    []byte
}

// ActorAlias returns an alias identifier.
func ActorAlias(alias string) ActorIdentifier {
	return ActorIdentifier{alias: alias}
}

// ActorKey returns a public-key identifier. The argument must be a valid
// public nkey.
func ActorKey(pub string) (ActorIdentifier, error) {
	prefix := nkeys.Prefix(pub)
	raw, err := nkeys.Decode(prefix, []byte(pub))
	if err != nil {
		return ActorIdentifier{}, fmt.Errorf("invalid public key %q: %w", pub, err)
	}
	return ActorIdentifier{keyPrefix: prefix, keyRaw: raw}, nil
}

// ParseActorIdentifier interprets s as a public key when it is a valid
// public nkey and as an alias otherwise. Parsing never fails.
func ParseActorIdentifier(s string) ActorIdentifier {
	if nkeys.IsValidPublicKey(s) {
		if id, err := ActorKey(s); err == nil {
			return id
		}
	}
	return ActorAlias(s)
}

// IsKey reports whether the identifier is a public-key identity.
func (a ActorIdentifier) IsKey() bool {
	return len(a.keyRaw) > 0
}

// Equal reports identity equality. Alias and key variants never compare
// equal to each other; key equality compares the decoded key material, not
// its serialized form.
func (a ActorIdentifier) Equal(b ActorIdentifier) bool {
	if a.IsKey() != b.IsKey() {
		return false
	}
	if a.IsKey() {
		return a.keyPrefix == b.keyPrefix && bytes.Equal(a.keyRaw, b.keyRaw)
	}
	return a.alias == b.alias
}

func (a ActorIdentifier) String() string {
	if a.IsKey() {
		enc, err := nkeys.Encode(a.keyPrefix, a.keyRaw)
		if err != nil {
			return fmt.Sprintf("key:%x", a.keyRaw)
		}
		return string(enc)
	}
	return a.alias
}

// TargetEntity is the logical destination of a capability call: either a
// named link or a specific actor.
type TargetEntity interface {
	isTargetEntity()
}

// LinkTarget addresses a link binding. Name is optional; an empty Name
// addresses the default link.
type LinkTarget struct {
	Name string
}

func (LinkTarget) isTargetEntity() {}

// ActorTarget addresses an actor by identifier.
type ActorTarget struct {
	ID ActorIdentifier
}

func (ActorTarget) isTargetEntity() {}
