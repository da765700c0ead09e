package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shul-backend/billing"
	"shul-backend/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(TenantModels...))
	return NewStore(db)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedPerson(t *testing.T, s *Store, first, last string) *models.Person {
	t.Helper()
	p := &models.Person{FirstName: first, LastName: last, Email: first + "@example.org", Member: true}
	require.NoError(t, s.CreatePerson(context.Background(), p))
	return p
}

func seedInvoice(t *testing.T, s *Store, personID, number string, total string, status billing.Status) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		InvoiceNumber: number,
		PersonID:      personID,
		Status:        status,
		Total:         dec(total),
		Balance:       dec(total),
		Items: []models.InvoiceItem{
			{Position: 1, Description: "Membership", Quantity: dec("1"), UnitPrice: dec(total), Amount: dec(total)},
		},
	}
	require.NoError(t, s.CreateInvoice(context.Background(), inv))
	return inv
}

func TestCreateInvoiceWritesItemsSnapshotAndEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")

	inv := &models.Invoice{
		InvoiceNumber: "INV-1",
		PersonID:      p.ID,
		Status:        billing.StatusSent,
		Total:         dec("150"),
		Balance:       dec("150"),
		Items: []models.InvoiceItem{
			{Position: 1, Description: "Seat", Quantity: dec("1"), UnitPrice: dec("100"), Amount: dec("100")},
			{Position: 2, Description: "Aliyah", Quantity: dec("2"), UnitPrice: dec("25"), Amount: dec("50")},
		},
	}
	ev := &models.OutboxEvent{Kind: models.EventInvoiceEmail, Payload: []byte(`{"invoice_id":"x"}`)}
	require.NoError(t, s.CreateInvoice(ctx, inv, ev))
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, 1, inv.Version)

	items, err := s.InvoiceItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Seat", items[0].Description)
	assert.True(t, dec("50").Equal(items[1].Amount))

	versions, err := s.InvoiceVersions(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, billing.StatusSent, versions[0].Status)

	pending, err := s.PendingOutbox(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EventInvoiceEmail, pending[0].Kind)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	s := newTestStore(t)
	p := seedPerson(t, s, "Moshe", "Katz")
	seedInvoice(t, s, p.ID, "INV-1", "10", billing.StatusSent)

	dup := &models.Invoice{InvoiceNumber: "INV-1", PersonID: p.ID, Status: billing.StatusSent, Total: dec("5"), Balance: dec("5")}
	err := s.CreateInvoice(context.Background(), dup)
	require.Error(t, err)

	_, total, err := s.ListInvoices(context.Background(), InvoiceFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetInvoiceNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetInvoice(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveInvoiceStateVersioning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	inv := seedInvoice(t, s, p.ID, "INV-1", "150", billing.StatusSent)

	inv.Balance = dec("100")
	inv.Status = billing.StatusPartial
	require.NoError(t, s.SaveInvoiceState(ctx, inv, 1))
	assert.Equal(t, 2, inv.Version)

	stale := *inv
	stale.Balance = dec("0")
	err := s.SaveInvoiceState(ctx, &stale, 1)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(got.Balance))
	assert.Equal(t, billing.StatusPartial, got.Status)
	assert.Equal(t, 2, got.Version)

	versions, err := s.InvoiceVersions(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[1].VersionNo)
}

func TestLockOpenInvoicesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	other := seedPerson(t, s, "Dovid", "Levy")

	first := seedInvoice(t, s, p.ID, "INV-1", "10", billing.StatusSent)
	seedInvoice(t, s, p.ID, "INV-2", "20", billing.StatusDraft)
	third := seedInvoice(t, s, p.ID, "INV-3", "30", billing.StatusOverdue)
	seedInvoice(t, s, other.ID, "INV-4", "40", billing.StatusSent)

	open, err := s.LockOpenInvoices(ctx, p.ID, nil)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, first.ID, open[0].ID)
	assert.Equal(t, third.ID, open[1].ID)

	only, err := s.LockOpenInvoices(ctx, p.ID, []string{third.ID})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, third.ID, only[0].ID)
}

func TestMarkOverdue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")

	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	late := seedInvoice(t, s, p.ID, "INV-1", "10", billing.StatusSent)
	onTime := seedInvoice(t, s, p.ID, "INV-2", "10", billing.StatusSent)
	require.NoError(t, s.DB().Model(&models.Invoice{}).Where("id = ?", late.ID).Update("due_date", past).Error)
	require.NoError(t, s.DB().Model(&models.Invoice{}).Where("id = ?", onTime.ID).Update("due_date", future).Error)

	n, err := s.MarkOverdue(ctx, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.GetInvoice(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, got.Status)
	assert.Equal(t, 2, got.Version)

	versions, err := s.InvoiceVersions(ctx, late.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[1].VersionNo)
	assert.Equal(t, billing.StatusOverdue, versions[1].Status)

	n, err = s.MarkOverdue(ctx, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestListInvoicesFilterAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	moshe := seedPerson(t, s, "Moshe", "Katz")
	dovid := seedPerson(t, s, "Dovid", "Levy")
	seedInvoice(t, s, moshe.ID, "INV-100", "10", billing.StatusSent)
	seedInvoice(t, s, moshe.ID, "INV-101", "20", billing.StatusPaid)
	seedInvoice(t, s, dovid.ID, "INV-200", "30", billing.StatusSent)

	list, total, err := s.ListInvoices(ctx, InvoiceFilter{Status: "sent", Limit: 10, Sort: "-total"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "INV-200", list[0].InvoiceNumber)

	list, total, err = s.ListInvoices(ctx, InvoiceFilter{Search: "katz", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, _, err = s.ListInvoices(ctx, InvoiceFilter{PersonID: dovid.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Person)
	assert.Equal(t, "Levy", list[0].Person.LastName)
}

func TestPaymentsAndIdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	inv := seedInvoice(t, s, p.ID, "INV-1", "150", billing.StatusSent)

	key := "abc-123"
	pay := &models.Payment{
		PersonID:       p.ID,
		Amount:         dec("50"),
		Method:         models.MethodCard,
		IdempotencyKey: &key,
		PaidAt:         time.Now().UTC(),
		Allocations:    []models.PaymentAllocation{{InvoiceID: inv.ID, Amount: dec("50")}},
	}
	require.NoError(t, s.CreatePayment(ctx, pay))

	found, err := s.FindPaymentByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, pay.ID, found.ID)
	require.Len(t, found.Allocations, 1)
	assert.Equal(t, inv.ID, found.Allocations[0].InvoiceID)

	_, err = s.FindPaymentByIdempotencyKey(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)

	again := &models.Payment{PersonID: p.ID, Amount: dec("1"), Method: models.MethodCard, IdempotencyKey: &key, PaidAt: time.Now().UTC()}
	assert.Error(t, s.CreatePayment(ctx, again))

	byInvoice, err := s.ListPayments(ctx, PaymentFilter{InvoiceID: inv.ID})
	require.NoError(t, err)
	require.Len(t, byInvoice, 1)
	assert.Equal(t, pay.ID, byInvoice[0].ID)
}

func TestSetDefaultPaymentMethod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	other := seedPerson(t, s, "Dovid", "Levy")

	a := &models.PaymentMethod{PersonID: p.ID, Kind: "card", Processor: models.ProcessorCardknox, ExternalToken: "tok_a", IsDefault: true}
	b := &models.PaymentMethod{PersonID: p.ID, Kind: "card", Processor: models.ProcessorCardknox, ExternalToken: "tok_b"}
	foreign := &models.PaymentMethod{PersonID: other.ID, Kind: "card", Processor: models.ProcessorCardknox, ExternalToken: "tok_c", IsDefault: true}
	for _, m := range []*models.PaymentMethod{a, b, foreign} {
		require.NoError(t, s.CreatePaymentMethod(ctx, m))
	}

	require.NoError(t, s.SetDefaultPaymentMethod(ctx, p.ID, b.ID))

	methods, err := s.ListPaymentMethods(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, b.ID, methods[0].ID)
	assert.True(t, methods[0].IsDefault)
	assert.False(t, methods[1].IsDefault)

	err = s.SetDefaultPaymentMethod(ctx, p.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetPaymentMethod(ctx, foreign.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	n, err := s.CountPaymentMethods(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestDeletePaymentMethodInUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	m := &models.PaymentMethod{PersonID: p.ID, Kind: "card", Processor: models.ProcessorStripe, ExternalToken: "pm_1"}
	require.NoError(t, s.CreatePaymentMethod(ctx, m))
	sub := &models.Subscription{
		PersonID: p.ID, PaymentMethodID: m.ID, Amount: dec("18"), Frequency: billing.FrequencyMonthly,
		NextChargeDate: time.Now().UTC(), Status: models.SubscriptionActive,
	}
	require.NoError(t, s.CreateSubscription(ctx, sub))

	assert.ErrorIs(t, s.DeletePaymentMethod(ctx, p.ID, m.ID), ErrConstraint)

	sub.Status = models.SubscriptionCanceled
	require.NoError(t, s.SaveSubscription(ctx, sub))
	require.NoError(t, s.DeletePaymentMethod(ctx, p.ID, m.ID))
	assert.ErrorIs(t, s.DeletePaymentMethod(ctx, p.ID, m.ID), ErrNotFound)
}

func TestDueSubscriptionIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	due := &models.Subscription{PersonID: p.ID, PaymentMethodID: "m", Amount: dec("18"), Frequency: billing.FrequencyMonthly,
		NextChargeDate: now.AddDate(0, 0, -1), Status: models.SubscriptionActive}
	later := &models.Subscription{PersonID: p.ID, PaymentMethodID: "m", Amount: dec("18"), Frequency: billing.FrequencyMonthly,
		NextChargeDate: now.AddDate(0, 1, 0), Status: models.SubscriptionActive}
	canceled := &models.Subscription{PersonID: p.ID, PaymentMethodID: "m", Amount: dec("18"), Frequency: billing.FrequencyMonthly,
		NextChargeDate: now.AddDate(0, 0, -1), Status: models.SubscriptionCanceled}
	for _, sub := range []*models.Subscription{due, later, canceled} {
		require.NoError(t, s.CreateSubscription(ctx, sub))
	}

	ids, err := s.DueSubscriptionIDs(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{due.ID}, ids)
}

func TestHonorsBilling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")

	types := []models.HonorType{{Name: "Aliyah", DefaultAmount: dec("18")}, {Name: "Pesicha", DefaultAmount: dec("36")}}
	require.NoError(t, s.CreateHonorTypes(ctx, types))
	listed, err := s.ListHonorTypes(ctx, true)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	h1 := &models.Honor{HonorTypeID: listed[0].ID, PersonID: p.ID, HonorDate: time.Now().UTC().AddDate(0, 0, -2), Amount: dec("18")}
	h2 := &models.Honor{HonorTypeID: listed[1].ID, PersonID: p.ID, HonorDate: time.Now().UTC().AddDate(0, 0, -1), Amount: dec("36")}
	require.NoError(t, s.CreateHonor(ctx, h1))
	require.NoError(t, s.CreateHonor(ctx, h2))

	unbilled, err := s.UnbilledHonors(ctx, p.ID, nil)
	require.NoError(t, err)
	require.Len(t, unbilled, 2)
	assert.Equal(t, h1.ID, unbilled[0].ID)
	require.NotNil(t, unbilled[0].HonorType)

	require.NoError(t, s.MarkHonorsBilled(ctx, []string{h1.ID}, "inv-1"))
	assert.ErrorIs(t, s.MarkHonorsBilled(ctx, []string{h1.ID, h2.ID}, "inv-2"), ErrConflict)

	unbilled, err = s.UnbilledHonors(ctx, p.ID, nil)
	require.NoError(t, err)
	require.Len(t, unbilled, 1)
	assert.Equal(t, h2.ID, unbilled[0].ID)

	billed, err := s.ListHonors(ctx, HonorFilter{PersonID: p.ID})
	require.NoError(t, err)
	for _, h := range billed {
		if h.ID == h1.ID {
			require.NotNil(t, h.InvoiceID)
			assert.Equal(t, "inv-1", *h.InvoiceID)
		}
	}
}

func TestOutboxLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := &models.OutboxEvent{Kind: models.EventInvoiceEmail, Payload: []byte(`{}`)}
	b := &models.OutboxEvent{Kind: models.EventInvoiceEmail, Payload: []byte(`{}`)}
	require.NoError(t, s.CreateOutboxEvent(ctx, a))
	require.NoError(t, s.CreateOutboxEvent(ctx, b))

	require.NoError(t, s.MarkOutboxProcessed(ctx, a.ID, time.Now().UTC()))
	require.NoError(t, s.MarkOutboxFailed(ctx, b.ID, "smtp down"))

	pending, err := s.PendingOutbox(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "smtp down", pending[0].LastError)

	pending, err = s.PendingOutbox(ctx, 10, 1)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.MarkOutboxFailed(ctx, 999, "x"), ErrNotFound)
}

func TestMemberBalancesAndCampaignRaised(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "Moshe", "Katz")
	c := &models.Campaign{Name: "Building Fund", Goal: dec("1000")}
	require.NoError(t, s.CreateCampaign(ctx, c))

	inv := seedInvoice(t, s, p.ID, "INV-1", "150", billing.StatusSent)
	require.NoError(t, s.DB().Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("campaign_id", c.ID).Error)
	seedInvoice(t, s, p.ID, "INV-2", "50", billing.StatusPartial)
	seedInvoice(t, s, p.ID, "INV-3", "70", billing.StatusPaid)

	balances, err := s.MemberBalances(ctx, "")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.EqualValues(t, 2, balances[0].OpenInvoices)
	assert.True(t, dec("200").Equal(balances[0].Balance))

	pay := &models.Payment{PersonID: p.ID, Amount: dec("40"), Method: models.MethodCash, PaidAt: time.Now().UTC(),
		Allocations: []models.PaymentAllocation{{InvoiceID: inv.ID, Amount: dec("40")}}}
	require.NoError(t, s.CreatePayment(ctx, pay))

	raised, err := s.CampaignRaised(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(raised), "raised %s", raised)
}

func TestPeopleSearchAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "Moshe", "Katz")
	dovid := seedPerson(t, s, "Dovid", "Levy")

	list, total, err := s.ListPeople(ctx, PersonFilter{Search: "lev", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, dovid.ID, list[0].ID)

	updated, err := s.UpdatePerson(ctx, dovid.ID, map[string]any{"hebrew_name": "David ben Avraham"})
	require.NoError(t, err)
	assert.Equal(t, "David ben Avraham", updated.HebrewName)

	_, err = s.UpdatePerson(ctx, "missing", map[string]any{"city": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(r Repository) error {
		p := &models.Person{FirstName: "Temp", LastName: "Person"}
		if err := r.(*Store).CreatePerson(ctx, p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := s.ListPeople(ctx, PersonFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		in   error
		want error
	}{
		{name: "not_found", in: gorm.ErrRecordNotFound, want: ErrNotFound},
		{name: "gorm_duplicate", in: gorm.ErrDuplicatedKey, want: ErrDuplicate},
		{name: "unique", in: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uni_invoices_invoice_number"}, want: ErrDuplicate},
		{name: "foreign_key", in: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, want: ErrInvalidReference},
		{name: "check", in: &pgconn.PgError{Code: pgerrcode.CheckViolation}, want: ErrConstraint},
		{name: "wrapped_unique", in: fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), want: ErrDuplicate},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.in), tc.want)
		})
	}

	assert.NoError(t, classify(nil))
	other := errors.New("other")
	assert.Equal(t, other, classify(other))
}

func TestSchemaName(t *testing.T) {
	got, err := SchemaName("  Young Israel of Flatbush! ")
	require.NoError(t, err)
	assert.Equal(t, "shul_young_israel_of_flatbush", got)

	_, err = SchemaName("!!!")
	assert.Error(t, err)
}

func TestIdempotencyKeyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &models.IdempotencyKey{Key: "k-1", RequestHash: "h1", Method: "POST", Path: "/api/invoices"}
	got, created, err := s.ClaimIdempotencyKey(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Zero(t, got.ResponseStatus)

	again, created, err := s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-1", RequestHash: "h1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.Pending())

	_, _, err = s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-1", RequestHash: "other"})
	assert.ErrorIs(t, err, ErrKeyReused)

	require.NoError(t, s.CompleteIdempotencyKey(ctx, "k-1", 201, []byte(`{"id":"x"}`), time.Now()))
	done, _, err := s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-1", RequestHash: "h1"})
	require.NoError(t, err)
	assert.Equal(t, 201, done.ResponseStatus)
	assert.JSONEq(t, `{"id":"x"}`, string(done.ResponseBody))
	require.NotNil(t, done.CompletedAt)

	// completed keys survive a release
	require.NoError(t, s.ReleaseIdempotencyKey(ctx, "k-1"))
	_, created, err = s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-1", RequestHash: "h1"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestReleaseIdempotencyKeyAllowsRetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, created, err := s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-2", RequestHash: "h"})
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, s.ReleaseIdempotencyKey(ctx, "k-2"))
	_, created, err = s.ClaimIdempotencyKey(ctx, &models.IdempotencyKey{Key: "k-2", RequestHash: "h"})
	require.NoError(t, err)
	assert.True(t, created)
}
