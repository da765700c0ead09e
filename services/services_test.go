package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"shul-backend/database"
	"shul-backend/mocks"
	"shul-backend/models"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	billing  *Billing
	repo     *mocks.MockRepository
	provider *mocks.MockProvider
	gw       *mocks.MockGateway
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:     mocks.NewMockRepository(ctrl),
		provider: mocks.NewMockProvider(ctrl),
		gw:       mocks.NewMockGateway(ctrl),
	}
	f.billing = NewBilling(f.repo, f.provider).WithLogger(zerolog.Nop())
	f.billing.now = func() time.Time { return testNow }
	f.gw.EXPECT().Name().Return("cardknox").AnyTimes()
	return f
}

// inTx makes WithinTx run fn against the same mock.
func (f *fixture) inTx() {
	f.repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(database.Repository) error) error {
			return fn(f.repo)
		})
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func (f *fixture) expectGateway() {
	pc := &models.ProcessorConfig{ID: 1, Processor: models.ProcessorCardknox, Active: true}
	f.repo.EXPECT().GetProcessorConfig(gomock.Any()).Return(pc, nil)
	f.provider.EXPECT().Resolve(pc).Return(f.gw, nil)
}
