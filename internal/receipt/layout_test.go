package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

const issuer = "JOBドラゴン"

func personalSpec() model.ReceiptSpec {
	return model.ReceiptSpec{
		Issuer:     issuer,
		PayeeLabel: "佐藤",
		LegalName:  "佐藤 花子",
		Address:    "東京都新宿区1-2-3",
		Phone:      "090-0000-0000",
		Birthdate:  "1990/01/01",
		IssueDate:  "2026年10月18日",
		Amount:     12000,
	}
}

func texts(plan Plan) []string {
	var out []string
	for _, item := range plan.Items {
		if item.Kind == ItemText {
			out = append(out, item.Text)
		}
	}
	return out
}

func payeeItem(t *testing.T, plan Plan) Item {
	t.Helper()
	require.NotEmpty(t, plan.Items)
	last := plan.Items[len(plan.Items)-1]
	require.Equal(t, ItemText, last.Kind)
	return last
}

func TestLayout_PersonalReceipt(t *testing.T) {
	spec := personalSpec()

	plan := Layout(spec)

	assert.Equal(t, PersonalReceipt{
		LegalName: "佐藤 花子",
		Address:   "東京都新宿区1-2-3",
		Phone:     "090-0000-0000",
		Birthdate: "1990/01/01",
	}, plan.Variant)

	got := texts(plan)
	assert.Contains(t, got, "佐藤 花子")
	assert.Contains(t, got, "東京都新宿区1-2-3")
	assert.Contains(t, got, "090-0000-0000")
	assert.Contains(t, got, "生年月日 1990/01/01")

	payee := payeeItem(t, plan)
	assert.Equal(t, "佐藤", payee.Text)
	assert.Equal(t, Purple, payee.Color)
	assert.InDelta(t, 28.0, payee.Size, 0.001)
}

func TestLayout_HouseReceipt(t *testing.T) {
	spec := personalSpec()
	spec.PayeeLabel = issuer

	plan := Layout(spec)

	assert.Equal(t, HouseReceipt{}, plan.Variant)

	got := texts(plan)
	assert.NotContains(t, got, "佐藤 花子")
	assert.NotContains(t, got, "生年月日 1990/01/01")
	assert.Len(t, got, len(texts(Layout(personalSpec())))-4)

	payee := payeeItem(t, plan)
	assert.Equal(t, issuer, payee.Text)
	assert.Equal(t, Black, payee.Color)
}

func TestLayout_MissingRosterFieldsStillDrawn(t *testing.T) {
	spec := model.ReceiptSpec{Issuer: issuer, PayeeLabel: "田中", Amount: 8000, IssueDate: "2026年10月18日"}

	got := texts(Layout(spec))

	assert.Contains(t, got, "生年月日 ")
	assert.Contains(t, got, "")
}

func TestLayout_FixedFields(t *testing.T) {
	got := texts(Layout(personalSpec()))

	assert.Contains(t, got, "領収書")
	assert.Contains(t, got, "No.   ")
	assert.Contains(t, got, "発行日 2026年10月18日")
	assert.Contains(t, got, issuer)
	assert.Contains(t, got, "¥ 12000-")
	assert.Contains(t, got, PurposeLine)
}

func TestLayout_FramesInsideThePage(t *testing.T) {
	for _, item := range Layout(personalSpec()).Items {
		assert.GreaterOrEqual(t, item.X, 10.0)
		assert.LessOrEqual(t, item.X+item.W, PageWidth-10.0)
		assert.GreaterOrEqual(t, item.Y, 10.0)
		assert.LessOrEqual(t, item.Y+item.H, PageHeight-10.0)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "¥ 12000-", FormatAmount(12000))
	assert.Equal(t, "¥ 0-", FormatAmount(0))
}
