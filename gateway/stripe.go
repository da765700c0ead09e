package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shul-backend/models"
	"shul-backend/utils"
)

const stripeURL = "https://api.stripe.com/v1"

// Stripe is a client for the Stripe PaymentIntents API.
type Stripe struct {
	httpClient *http.Client
	secret     string
	baseURL    string
}

func NewStripe(httpClient *http.Client, secret, baseURL string) *Stripe {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = stripeURL
	}
	return &Stripe{httpClient: httpClient, secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Stripe) Name() string { return models.ProcessorStripe }

type stripeError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

func (s *Stripe) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(utils.ToCents(req.Amount), 10))
	form.Set("currency", "usd")
	form.Set("payment_method", req.Token)
	if req.Customer != "" {
		form.Set("customer", req.Customer)
	}
	form.Set("confirm", "true")
	form.Set("off_session", "true")
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	if req.InvoiceID != "" {
		form.Set("metadata[invoice_id]", req.InvoiceID)
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := s.post(ctx, "/payment_intents", form, req.IdempotencyKey, &out); err != nil {
		return ChargeResult{}, err
	}
	if out.Status != "succeeded" && out.Status != "processing" {
		return ChargeResult{}, &DeclineError{Processor: models.ProcessorStripe, Code: out.Status, Message: "payment requires further action"}
	}
	return ChargeResult{Reference: out.ID}, nil
}

// SaveMethod creates a customer and attaches the payment method to it so it
// can be charged off-session later.
func (s *Stripe) SaveMethod(ctx context.Context, req SaveMethodRequest) (SavedMethod, error) {
	cust := url.Values{}
	if req.Email != "" {
		cust.Set("email", req.Email)
	}
	if req.Name != "" {
		cust.Set("name", req.Name)
	}
	var customer struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, "/customers", cust, "", &customer); err != nil {
		return SavedMethod{}, err
	}

	attach := url.Values{}
	attach.Set("customer", customer.ID)
	var pm struct {
		ID   string `json:"id"`
		Card *struct {
			Brand string `json:"brand"`
			Last4 string `json:"last4"`
		} `json:"card"`
		USBankAccount *struct {
			BankName string `json:"bank_name"`
			Last4    string `json:"last4"`
		} `json:"us_bank_account"`
	}
	if err := s.post(ctx, "/payment_methods/"+url.PathEscape(req.Token)+"/attach", attach, "", &pm); err != nil {
		return SavedMethod{}, err
	}

	saved := SavedMethod{Token: pm.ID, Customer: customer.ID}
	switch {
	case pm.Card != nil:
		saved.Brand, saved.Last4 = pm.Card.Brand, pm.Card.Last4
	case pm.USBankAccount != nil:
		saved.Brand, saved.Last4 = pm.USBankAccount.BankName, pm.USBankAccount.Last4
	}
	return saved, nil
}

func (s *Stripe) post(ctx context.Context, path string, form url.Values, idempotencyKey string, dst any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.SetBasicAuth(s.secret, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stripe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var se stripeError
		if err := json.NewDecoder(resp.Body).Decode(&se); err != nil || se.Error.Message == "" {
			return fmt.Errorf("stripe: unexpected status %s", resp.Status)
		}
		// card_error is a decline; anything else is ours to fix.
		if se.Error.Type == "card_error" || resp.StatusCode == http.StatusPaymentRequired {
			code := se.Error.DeclineCode
			if code == "" {
				code = se.Error.Code
			}
			return &DeclineError{Processor: models.ProcessorStripe, Code: code, Message: se.Error.Message}
		}
		return fmt.Errorf("stripe: %s (%s)", se.Error.Message, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("stripe: decode response: %w", err)
	}
	return nil
}
