package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shul-backend/models"
)

const (
	cardknoxURL     = "https://x1.cardknox.com/gatewayjson"
	cardknoxVersion = "5.0.0"
	cardknoxSW      = "shul-backend"
	cardknoxSWVer   = "1.0"
)

// Cardknox is a client for the Cardknox transaction API (JSON endpoint).
type Cardknox struct {
	httpClient *http.Client
	key        string
	baseURL    string
}

func NewCardknox(httpClient *http.Client, key, baseURL string) *Cardknox {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = cardknoxURL
	}
	return &Cardknox{httpClient: httpClient, key: key, baseURL: baseURL}
}

func (c *Cardknox) Name() string { return models.ProcessorCardknox }

type cardknoxResponse struct {
	Result           string `json:"xResult"` // A approved, D declined, E error
	Status           string `json:"xStatus"`
	Error            string `json:"xError"`
	ErrorCode        string `json:"xErrorCode"`
	RefNum           string `json:"xRefNum"`
	AuthCode         string `json:"xAuthCode"`
	Token            string `json:"xToken"`
	MaskedCardNumber string `json:"xMaskedCardNumber"`
	CardType         string `json:"xCardType"`
}

func (c *Cardknox) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	command := "cc:sale"
	if req.Kind == models.MethodACH {
		command = "check:sale"
	}
	payload := map[string]any{
		"xCommand":     command,
		"xAmount":      req.Amount.StringFixed(2),
		"xToken":       req.Token,
		"xInvoice":     req.InvoiceID,
		"xDescription": req.Description,
	}
	if req.IdempotencyKey != "" {
		payload["xCustom01"] = req.IdempotencyKey
	}
	resp, err := c.do(ctx, payload)
	if err != nil {
		return ChargeResult{}, err
	}
	return ChargeResult{Reference: resp.RefNum, AuthCode: resp.AuthCode}, nil
}

func (c *Cardknox) SaveMethod(ctx context.Context, req SaveMethodRequest) (SavedMethod, error) {
	command := "cc:save"
	if req.Kind == models.MethodACH {
		command = "check:save"
	}
	payload := map[string]any{
		"xCommand": command,
		"xToken":   req.Token,
		"xName":    req.Name,
		"xEmail":   req.Email,
	}
	if req.ExpMonth > 0 && req.ExpYear > 0 {
		payload["xExp"] = fmt.Sprintf("%02d%02d", req.ExpMonth, req.ExpYear%100)
	}
	resp, err := c.do(ctx, payload)
	if err != nil {
		return SavedMethod{}, err
	}
	return SavedMethod{
		Token: resp.Token,
		Brand: resp.CardType,
		Last4: last4(resp.MaskedCardNumber),
	}, nil
}

func (c *Cardknox) do(ctx context.Context, payload map[string]any) (cardknoxResponse, error) {
	payload["xKey"] = c.key
	payload["xVersion"] = cardknoxVersion
	payload["xSoftwareName"] = cardknoxSW
	payload["xSoftwareVersion"] = cardknoxSWVer

	body, err := json.Marshal(payload)
	if err != nil {
		return cardknoxResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return cardknoxResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return cardknoxResponse{}, fmt.Errorf("cardknox: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return cardknoxResponse{}, fmt.Errorf("cardknox: unexpected status %s", resp.Status)
	}
	var out cardknoxResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return cardknoxResponse{}, fmt.Errorf("cardknox: decode response: %w", err)
	}
	switch out.Result {
	case "A":
		return out, nil
	case "D":
		return out, &DeclineError{Processor: models.ProcessorCardknox, Code: out.ErrorCode, Message: nonEmpty(out.Error, "card declined")}
	}
	return out, &DeclineError{Processor: models.ProcessorCardknox, Code: out.ErrorCode, Message: nonEmpty(out.Error, "transaction error")}
}

func last4(masked string) string {
	masked = strings.TrimSpace(masked)
	if len(masked) <= 4 {
		return masked
	}
	return masked[len(masked)-4:]
}

func nonEmpty(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
