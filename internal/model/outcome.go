package model

// FailureKind classifies why an entry produced no receipt.
type FailureKind string

const (
	// FailureUnregistered means the payee has no roster record.
	FailureUnregistered FailureKind = "unregistered"
	// FailureRenderFailed means the receipt could not be written.
	FailureRenderFailed FailureKind = "render-failed"
	// FailureCancelled means processing stopped before the entry was resolved.
	FailureCancelled FailureKind = "cancelled"
)

// Success records a receipt issued for an entry.
type Success struct {
	Artifact  ReceiptArtifact
	Reference string // Slash-separated path relative to the output directory
	Entry     LedgerEntry
	Index     int
}

// Failure records an entry that could not be turned into a receipt.
type Failure struct {
	Err   error
	Kind  FailureKind
	Entry LedgerEntry
	Index int
}

// BatchResult holds the outcomes of one processed message, each list in entry order.
type BatchResult struct {
	Successes []Success
	Failures  []Failure
}

// Total returns the number of outcomes recorded.
func (r BatchResult) Total() int {
	return len(r.Successes) + len(r.Failures)
}
