// Package dao models the host ledger's staking ("DAO") collaborator surface:
// decoded header metadata and the external interest formula. The production
// formula belongs to the host ledger; this package only fixes its signature.
package dao

// HeaderData is the decoded header metadata the validator needs: the block
// number the header was produced at, its epoch, and the ledger's accumulated
// interest rate as of that block.
type HeaderData struct {
	Number          uint64
	Epoch           uint64
	AccumulatedRate uint64
}

// Calculator computes the capacity (including accrued interest) obtainable
// when closing out a deposit recorded at depositedNumber as of the reference
// header. Implementations must be pure: same inputs, same output.
type Calculator interface {
	Withdrawable(
		occupiedCapacity uint64,
		deposit HeaderData,
		reference HeaderData,
		depositedNumber uint64,
		originalCapacity uint64,
	) (uint64, error)
}
