package model

// ReceiptSpec is the fully resolved input for rendering one receipt.
type ReceiptSpec struct {
	Issuer     string
	PayeeLabel string
	LegalName  string
	Address    string
	Phone      string
	Birthdate  string
	IssueDate  string
	OutputPath string
	Amount     int
}

// IsHouse reports whether the receipt is issued to the issuing entity itself.
func (s ReceiptSpec) IsHouse() bool {
	return s.PayeeLabel == s.Issuer
}

// ReceiptArtifact is a rendered receipt file. Path is unique on the output filesystem.
type ReceiptArtifact struct {
	Path string
}
