package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentScenario(t *testing.T) {
	totals := ComputeTotals([]Line{
		{Quantity: d("1"), UnitPrice: d("100")},
		{Quantity: d("2"), UnitPrice: d("25")},
	})
	require.True(t, d("150").Equal(totals.Total))

	r, err := ApplyPayment(StatusSent, totals.Total, d("50"))
	require.NoError(t, err)
	assert.True(t, d("100").Equal(r.Balance))
	assert.Equal(t, StatusPartial, r.Status)

	r, err = ApplyPayment(r.Status, r.Balance, d("100"))
	require.NoError(t, err)
	assert.True(t, r.Balance.IsZero())
	assert.Equal(t, StatusPaid, r.Status)
}

func TestApplyPayment(t *testing.T) {
	testCases := []struct {
		name        string
		status      Status
		balance     string
		amount      string
		wantBalance string
		wantStatus  Status
		expectedErr error
	}{
		{name: "partial_from_sent", status: StatusSent, balance: "150", amount: "50", wantBalance: "100", wantStatus: StatusPartial},
		{name: "full_from_sent", status: StatusSent, balance: "150", amount: "150", wantBalance: "0", wantStatus: StatusPaid},
		{name: "partial_again", status: StatusPartial, balance: "100", amount: "25.50", wantBalance: "74.50", wantStatus: StatusPartial},
		{name: "overdue_settled", status: StatusOverdue, balance: "18", amount: "18", wantBalance: "0", wantStatus: StatusPaid},
		{name: "zero_amount", status: StatusSent, balance: "150", amount: "0", expectedErr: ErrNonPositiveAmount},
		{name: "negative_amount", status: StatusSent, balance: "150", amount: "-1", expectedErr: ErrNonPositiveAmount},
		{name: "overpayment", status: StatusSent, balance: "150", amount: "150.01", expectedErr: ErrOverpayment},
		{name: "void", status: StatusVoid, balance: "150", amount: "1", expectedErr: ErrInvoiceVoid},
		{name: "paid", status: StatusPaid, balance: "0", amount: "1", expectedErr: ErrInvoicePaid},
		{name: "draft", status: StatusDraft, balance: "150", amount: "1", expectedErr: ErrInvoiceDraft},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ApplyPayment(tc.status, d(tc.balance), d(tc.amount))
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tc.wantBalance).Equal(r.Balance), "balance: want %s got %s", tc.wantBalance, r.Balance)
			assert.Equal(t, tc.wantStatus, r.Status)
		})
	}
}

func TestDefaultPaymentAmount(t *testing.T) {
	assert.True(t, d("42.50").Equal(DefaultPaymentAmount(d("42.50"))))
	assert.True(t, DefaultPaymentAmount(d("-3")).IsZero())
}

func TestNextChargeDate(t *testing.T) {
	jan31 := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	next, err := NextChargeDate(jan31, FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC), next)

	next, err = NextChargeDate(jan31, FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC), next)

	feb29 := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	next, err = NextChargeDate(feb29, FrequencyYearly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC), next)

	_, err = NextChargeDate(jan31, Frequency("daily"))
	assert.Error(t, err)
}

func TestInstallmentDone(t *testing.T) {
	next := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, InstallmentDone(12, 12, next, nil))
	assert.False(t, InstallmentDone(3, 12, next, nil))
	assert.False(t, InstallmentDone(3, 0, next, nil))
	assert.True(t, InstallmentDone(3, 0, next, &end))
}
