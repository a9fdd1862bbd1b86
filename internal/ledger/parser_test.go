package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

func TestParse_StoreScenario(t *testing.T) {
	text := "MINE\n佐藤 12000\n鈴木 15000\nM\n田中 8000"

	entries := Parse(text, DefaultGroupTable())

	assert.Equal(t, []model.LedgerEntry{
		{Group: "MINE", PayeeLabel: "佐藤", Amount: 12000},
		{Group: "MINE", PayeeLabel: "鈴木", Amount: 15000},
		{Group: "M", PayeeLabel: "田中", Amount: 8000},
	}, entries)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.LedgerEntry
	}{
		{
			name: "empty input",
			text: "",
			want: []model.LedgerEntry{},
		},
		{
			name: "whitespace only",
			text: "  \n\t\n   ",
			want: []model.LedgerEntry{},
		},
		{
			name: "rows before any group are skipped",
			text: "佐藤 12000\nマイン\n鈴木 15000",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "鈴木", Amount: 15000},
			},
		},
		{
			name: "no group markers at all",
			text: "佐藤 12000\n鈴木 15000",
			want: []model.LedgerEntry{},
		},
		{
			name: "group line that also looks like a row is only a switch",
			text: "MINE 12000\n佐藤 5000",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "佐藤", Amount: 5000},
			},
		},
		{
			name: "thousands separators and currency glyph",
			text: "えむ\n佐藤 ¥12,000\n鈴木 ￥1,500,000",
			want: []model.LedgerEntry{
				{Group: "M", PayeeLabel: "佐藤", Amount: 12000},
				{Group: "M", PayeeLabel: "鈴木", Amount: 1500000},
			},
		},
		{
			name: "glyph directly after the label",
			text: "MINE\n佐藤¥12000",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "佐藤", Amount: 12000},
			},
		},
		{
			name: "full width digits",
			text: "MINE\n佐藤 １２０００",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "佐藤", Amount: 12000},
			},
		},
		{
			name: "noise lines and trailing text",
			text: "おつかれさまです\nMINE\nよろしく\n佐藤 12000円\n-500\n田中 -300",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "佐藤", Amount: 12000},
			},
		},
		{
			name: "windows line endings and indentation",
			text: "MINE\r\n   佐藤 12000  \r\n\r\n鈴木 3000",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "佐藤", Amount: 12000},
				{Group: "MINE", PayeeLabel: "鈴木", Amount: 3000},
			},
		},
		{
			name: "amount too large for int is skipped",
			text: "MINE\n佐藤 99999999999999999999999\n鈴木 1",
			want: []model.LedgerEntry{
				{Group: "MINE", PayeeLabel: "鈴木", Amount: 1},
			},
		},
		{
			name: "group persists until the next switch",
			text: "M\n佐藤 1\n鈴木 2\nまいん\n田中 3\n高橋 4",
			want: []model.LedgerEntry{
				{Group: "M", PayeeLabel: "佐藤", Amount: 1},
				{Group: "M", PayeeLabel: "鈴木", Amount: 2},
				{Group: "MINE", PayeeLabel: "田中", Amount: 3},
				{Group: "MINE", PayeeLabel: "高橋", Amount: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, DefaultGroupTable())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_SeparatorsDoNotChangeAmount(t *testing.T) {
	plain := Parse("MINE\n佐藤 12000", DefaultGroupTable())
	separated := Parse("MINE\n佐藤 12,000", DefaultGroupTable())

	require.Len(t, plain, 1)
	require.Len(t, separated, 1)
	assert.Equal(t, plain[0].Amount, separated[0].Amount)
}

func TestParse_Idempotent(t *testing.T) {
	text := "MINE\n佐藤 12000\nnoise\nM\n田中 8,000"

	first := Parse(text, DefaultGroupTable())
	second := Parse(text, DefaultGroupTable())

	assert.Equal(t, first, second)
}

func TestParse_FirstDeclaredGroupWins(t *testing.T) {
	table := GroupTable{
		{ID: "B", Aliases: []string{"shared"}},
		{ID: "A", Aliases: []string{"shared", "alpha"}},
	}

	entries := Parse("alpha shared\n佐藤 100", table)

	require.Len(t, entries, 1)
	assert.Equal(t, model.GroupID("B"), entries[0].Group)
}

func TestParse_GroupLinesNeverEmitted(t *testing.T) {
	table := DefaultGroupTable()
	text := "MINE 5000\nM 3000\nエム 100\n佐藤 1"

	entries := Parse(text, table)

	for _, e := range entries {
		_, isGroupLine := table.Match(e.PayeeLabel)
		assert.False(t, isGroupLine, "group alias leaked into entry %+v", e)
	}
	assert.Len(t, entries, 1)
}
