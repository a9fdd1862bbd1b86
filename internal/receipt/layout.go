// Package receipt renders single-page receipt documents.
package receipt

import (
	"fmt"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// Page size in millimetres.
const (
	PageWidth  = 180.0
	PageHeight = 100.0
)

const (
	pt     = 25.4 / 72 // one typographic point in mm
	inset  = 10.0
	column = 20.0

	// PurposeLine is printed on every receipt.
	PurposeLine = "但し 業務委託費として、上記正に領収いたしました"
)

// Color is an RGB triple.
type Color struct {
	R, G, B int
}

// Palette.
var (
	Black     = Color{0, 0, 0}
	Purple    = Color{128, 0, 128}
	LightGrey = Color{211, 211, 211}
)

// ItemKind says how an Item is drawn.
type ItemKind int

// Item kinds.
const (
	ItemText ItemKind = iota
	ItemFilledRect
	ItemStrokedRect
)

// Item is one drawing instruction. Coordinates are in mm from the top-left
// corner; for text, Y is the baseline.
type Item struct {
	Text  string
	Color Color
	Kind  ItemKind
	X, Y  float64
	W, H  float64
	Size  float64 // Font size in points
}

// Variant is the personal or house flavour of a receipt.
type Variant interface {
	details() []string
	emphasis() Color
}

// PersonalReceipt carries the payee's roster details.
type PersonalReceipt struct {
	LegalName string
	Address   string
	Phone     string
	Birthdate string
}

func (p PersonalReceipt) details() []string {
	return []string{p.LegalName, p.Address, p.Phone, "生年月日 " + p.Birthdate}
}

func (PersonalReceipt) emphasis() Color { return Purple }

// HouseReceipt is issued to the issuer itself and shows no personal details.
type HouseReceipt struct{}

func (HouseReceipt) details() []string { return nil }

func (HouseReceipt) emphasis() Color { return Black }

// VariantOf picks the receipt variant for spec.
func VariantOf(spec model.ReceiptSpec) Variant {
	if spec.IsHouse() {
		return HouseReceipt{}
	}
	return PersonalReceipt{
		LegalName: spec.LegalName,
		Address:   spec.Address,
		Phone:     spec.Phone,
		Birthdate: spec.Birthdate,
	}
}

// Plan is the complete set of drawing instructions for one receipt.
type Plan struct {
	Variant Variant
	Items   []Item
}

// Layout computes the drawing plan for spec.
func Layout(spec model.ReceiptSpec) Plan {
	variant := VariantOf(spec)

	items := []Item{
		{Kind: ItemFilledRect, X: inset, Y: 35, W: PageWidth - 2*inset, H: 12, Color: LightGrey},
		{Kind: ItemStrokedRect, X: inset, Y: inset, W: PageWidth - 2*inset, H: PageHeight - 2*inset, Color: Black},
		text(column+175*pt, 20, 16, "領収書", Black),
		// The number is intentionally left for hand writing.
		text(PageWidth-60, 22, 12, "No.   ", Black),
		text(PageWidth-60, 30, 12, "発行日 "+spec.IssueDate, Black),
		text(column+15*pt, 30, 17, spec.Issuer, Black),
		text(column+150*pt, 44, 22, FormatAmount(spec.Amount), Black),
		text(column+75*pt, 56, 12, PurposeLine, Black),
	}

	for i, line := range variant.details() {
		items = append(items, text(column+90*pt, 65+float64(i)*5, 10, line, Black))
	}

	items = append(items, text(column+240*pt, 80, 28, spec.PayeeLabel, variant.emphasis()))

	return Plan{Variant: variant, Items: items}
}

// FormatAmount renders an amount the way it is printed on the receipt.
func FormatAmount(amount int) string {
	return fmt.Sprintf("¥ %d-", amount)
}

func text(x, y, size float64, s string, c Color) Item {
	return Item{Kind: ItemText, X: x, Y: y, Size: size, Text: s, Color: c}
}
