package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	testCases := []struct {
		name    string
		lines   []Line
		amounts []string
		total   string
	}{
		{
			name:  "empty",
			lines: nil,
			total: "0",
		},
		{
			name: "two_lines",
			lines: []Line{
				{Description: "Aliyah", Quantity: d("1"), UnitPrice: d("100")},
				{Description: "Seats", Quantity: d("2"), UnitPrice: d("25")},
			},
			amounts: []string{"100", "50"},
			total:   "150",
		},
		{
			name: "fractional",
			lines: []Line{
				{Quantity: d("3"), UnitPrice: d("18.18")},
				{Quantity: d("0.5"), UnitPrice: d("36")},
			},
			amounts: []string{"54.54", "18"},
			total:   "72.54",
		},
		{
			name: "credit_line",
			lines: []Line{
				{Quantity: d("1"), UnitPrice: d("360")},
				{Description: "Member discount", Quantity: d("1"), UnitPrice: d("-60")},
			},
			amounts: []string{"360", "-60"},
			total:   "300",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.lines)

			require.Len(t, got.Amounts, len(tc.lines))
			for i, a := range tc.amounts {
				assert.True(t, d(a).Equal(got.Amounts[i]), "line %d: want %s got %s", i, a, got.Amounts[i])
			}
			assert.True(t, d(tc.total).Equal(got.Total), "want %s got %s", tc.total, got.Total)
		})
	}
}

func TestComputeTotalsTracksEdits(t *testing.T) {
	lines := []Line{{Quantity: d("1"), UnitPrice: d("100")}}
	assert.Equal(t, "100.00", Display(ComputeTotals(lines).Total))

	lines = append(lines, Line{Quantity: d("2"), UnitPrice: d("25")})
	assert.Equal(t, "150.00", Display(ComputeTotals(lines).Total))

	lines[0].Quantity = d("2")
	assert.Equal(t, "250.00", Display(ComputeTotals(lines).Total))

	lines = lines[1:]
	assert.Equal(t, "50.00", Display(ComputeTotals(lines).Total))
}

func TestTotalsCents(t *testing.T) {
	lines := []Line{
		{Quantity: d("0.333"), UnitPrice: d("1")},
		{Quantity: d("0.333"), UnitPrice: d("1")},
		{Quantity: d("0.333"), UnitPrice: d("1")},
	}
	exact := ComputeTotals(lines)
	assert.Equal(t, "0.999", exact.Total.String())

	got := exact.Cents()
	require.Len(t, got.Amounts, 3)
	sum := decimal.Zero
	for _, a := range got.Amounts {
		assert.Equal(t, "0.33", a.StringFixed(2))
		sum = sum.Add(a)
	}
	assert.True(t, sum.Equal(got.Total), "stored total %s, items sum to %s", got.Total, sum)
	assert.Equal(t, "0.99", Display(got.Total))
}

func TestDraftValidate(t *testing.T) {
	oneLine := []Line{{Quantity: d("1"), UnitPrice: d("18")}}

	testCases := []struct {
		name        string
		draft       Draft
		expectedErr error
	}{
		{
			name:  "ok",
			draft: Draft{PersonID: "p1", Lines: oneLine},
		},
		{
			name:        "missing_payer",
			draft:       Draft{PersonID: "  ", Lines: oneLine},
			expectedErr: ErrNoPayer,
		},
		{
			name:        "zero_total",
			draft:       Draft{PersonID: "p1"},
			expectedErr: ErrEmptyTotal,
		},
		{
			name: "negative_total",
			draft: Draft{PersonID: "p1", Lines: []Line{
				{Quantity: d("1"), UnitPrice: d("-5")},
			}},
			expectedErr: ErrEmptyTotal,
		},
		{
			name: "rounds_to_zero",
			draft: Draft{PersonID: "p1", Lines: []Line{
				{Quantity: d("0.001"), UnitPrice: d("1")},
			}},
			expectedErr: ErrEmptyTotal,
		},
		{
			name:        "campaign_required",
			draft:       Draft{PersonID: "p1", RequireCampaign: true, Lines: oneLine},
			expectedErr: ErrNoCampaign,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := tc.draft.Validate()
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, totals.Total.IsPositive())
		})
	}
}

