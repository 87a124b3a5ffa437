package ledger

import "golang.org/x/crypto/blake2b"

// ScriptIdentity derives the 32-byte identity of a serialized script. The
// host ledger's own identity derivation is external; this helper exists so
// fixtures and tooling can build consistent lock and type identifiers from
// script bytes.
func ScriptIdentity(script []byte) [32]byte {
	return blake2b.Sum256(script)
}
