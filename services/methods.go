package services

import (
	"context"
	"fmt"
	"strings"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/models"
)

type AddMethodInput struct {
	PersonID    string
	Token       string // single-use token from the hosted fields
	Kind        string // card | ach
	ExpMonth    int
	ExpYear     int
	MakeDefault bool
}

// AddPaymentMethod exchanges a hosted-fields token for a reusable one and
// stores it. A person's first method becomes the default.
func (b *Billing) AddPaymentMethod(ctx context.Context, in AddMethodInput) (*models.PaymentMethod, error) {
	if strings.TrimSpace(in.Token) == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrNoMethod)
	}
	kind := in.Kind
	if kind == "" {
		kind = models.MethodCard
	}

	var out *models.PaymentMethod
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		person, err := tx.GetPerson(ctx, in.PersonID)
		if err != nil {
			return fmt.Errorf("person: %w", err)
		}
		gw, err := b.gatewayFor(ctx, tx)
		if err != nil {
			return err
		}
		saved, err := gw.SaveMethod(ctx, gateway.SaveMethodRequest{
			Token:    in.Token,
			Kind:     kind,
			Email:    person.Email,
			Name:     person.FullName(),
			ExpMonth: in.ExpMonth,
			ExpYear:  in.ExpYear,
		})
		if err != nil {
			return err
		}
		existing, err := tx.CountPaymentMethods(ctx, in.PersonID)
		if err != nil {
			return err
		}

		m := &models.PaymentMethod{
			PersonID:         in.PersonID,
			Kind:             kind,
			Brand:            saved.Brand,
			Last4:            saved.Last4,
			ExpMonth:         in.ExpMonth,
			ExpYear:          in.ExpYear,
			Processor:        gw.Name(),
			ExternalToken:    saved.Token,
			ExternalCustomer: saved.Customer,
		}
		if err := tx.CreatePaymentMethod(ctx, m); err != nil {
			return fmt.Errorf("store payment method: %w", err)
		}
		if existing == 0 || in.MakeDefault {
			if err := tx.SetDefaultPaymentMethod(ctx, in.PersonID, m.ID); err != nil {
				return err
			}
			m.IsDefault = true
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetDefaultPaymentMethod makes methodID the person's only default.
func (b *Billing) SetDefaultPaymentMethod(ctx context.Context, personID, methodID string) error {
	if strings.TrimSpace(methodID) == "" {
		return ErrNoMethod
	}
	return b.repo.SetDefaultPaymentMethod(ctx, personID, methodID)
}
