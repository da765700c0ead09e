package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"shul-backend/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record was modified concurrently")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrConstraint       = errors.New("value violates a constraint")
)

// Repository is the part of the tenant store the billing services depend on.
type Repository interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error

	GetPerson(ctx context.Context, id string) (*models.Person, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)

	CreateInvoice(ctx context.Context, inv *models.Invoice, events ...*models.OutboxEvent) error
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	InvoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error)
	LockInvoice(ctx context.Context, id string) (*models.Invoice, error)
	LockOpenInvoices(ctx context.Context, personID string, ids []string) ([]models.Invoice, error)
	SaveInvoiceState(ctx context.Context, inv *models.Invoice, expectedVersion int) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	FindPaymentByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)

	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, m *models.PaymentMethod) error
	CountPaymentMethods(ctx context.Context, personID string) (int64, error)
	SetDefaultPaymentMethod(ctx context.Context, personID, methodID string) error

	CreateSubscription(ctx context.Context, s *models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	LockSubscription(ctx context.Context, id string) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, s *models.Subscription) error
	DueSubscriptionIDs(ctx context.Context, asOf time.Time, limit int) ([]string, error)

	UnbilledHonors(ctx context.Context, personID string, ids []string) ([]models.Honor, error)
	MarkHonorsBilled(ctx context.Context, ids []string, invoiceID string) error

	GetProcessorConfig(ctx context.Context) (*models.ProcessorConfig, error)

	CreateOutboxEvent(ctx context.Context, ev *models.OutboxEvent) error
	PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkOutboxProcessed(ctx context.Context, id uint, at time.Time) error
	MarkOutboxFailed(ctx context.Context, id uint, reason string) error
}

// Store is the tenant-scoped data access layer. The *gorm.DB it wraps must
// already be pinned to the tenant schema (TenantTx or InTenant).
type Store struct {
	db *gorm.DB
}

var _ Repository = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for ad-hoc reads.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithinTx runs fn in a transaction, or a savepoint when already inside one.
func (s *Store) WithinTx(ctx context.Context, fn func(Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// classify maps driver errors onto the package sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		}
	}
	return err
}

func (s *Store) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (s *Store) GetProcessorConfig(ctx context.Context) (*models.ProcessorConfig, error) {
	var pc models.ProcessorConfig
	if err := s.conn(ctx).Where("active = ?", true).Order("id DESC").First(&pc).Error; err != nil {
		return nil, classify(err)
	}
	return &pc, nil
}

// SaveProcessorConfig replaces the active processor configuration.
func (s *Store) SaveProcessorConfig(ctx context.Context, pc *models.ProcessorConfig) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProcessorConfig{}).Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return classify(err)
		}
		pc.ID = 0
		pc.Active = true
		return classify(tx.Create(pc).Error)
	})
}
