package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/middlewares"
	"shul-backend/mocks"
	"shul-backend/models"
	"shul-backend/utils"
)

type harness struct {
	app   *fiber.App
	store *database.Store
	gw    *mocks.MockGateway
}

func newHarness(t *testing.T, role string) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.TenantModels...))

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Name().Return("cardknox").AnyTimes()
	provider.EXPECT().Resolve(gomock.Any()).Return(gw, nil).AnyTimes()

	key, err := utils.SealKey("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	Configure(provider, key)
	t.Cleanup(func() { Configure(nil, nil) })

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	// stands in for IsAuthenticatedHeader + TenantTx
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "u1")
		c.Locals("schema", "shul_test")
		c.Locals("role", role)
		c.Locals("tx", db)
		return c.Next()
	})
	admin := middlewares.RequireRole(models.RoleAdmin)
	app.Put("/processor", admin, PutProcessorConfig)
	app.Get("/processor", GetProcessorConfig)
	app.Post("/people", CreatePerson)
	app.Get("/people", GetPeople)
	app.Patch("/people/:id", UpdatePerson)
	app.Get("/people/:id/balance", GetPersonBalance)
	app.Post("/people/:id/payments", PayBalance)
	app.Post("/people/:id/payment-methods", AddPaymentMethod)
	app.Put("/people/:id/payment-methods/:methodId/default", SetDefaultPaymentMethod)
	app.Get("/balances", GetBalances)
	app.Post("/campaigns", CreateCampaign)
	app.Get("/campaigns/:id", GetCampaign)
	app.Post("/honor-types", CreateHonorTypes)
	app.Post("/honors", CreateHonor)
	app.Post("/honors/bill", BillHonors)
	app.Post("/invoices", CreateInvoice)
	app.Get("/invoices", GetInvoices)
	app.Get("/invoices/:id", GetInvoice)
	app.Post("/invoices/:id/send", SendInvoice)
	app.Post("/invoices/:id/void", VoidInvoice)
	app.Get("/invoices/:id/versions", GetInvoiceVersions)
	app.Post("/invoices/:id/payments", PayInvoice)
	app.Post("/invoices/:id/payments/manual", RecordManualPayment)
	app.Get("/invoices/:id/payments", GetPayments)

	return &harness{app: app, store: database.NewStore(db), gw: gw}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (h *harness) configureProcessor(t *testing.T) {
	t.Helper()
	status, body := h.do(t, http.MethodPut, "/processor", fiber.Map{
		"processor": "cardknox", "api_key": "ck_live_secret", "public_key": "ifields_pub",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.NotContains(t, body, "api_key_sealed")
}

func (h *harness) createPerson(t *testing.T, first string) string {
	t.Helper()
	status, body := h.do(t, http.MethodPost, "/people", fiber.Map{
		"first_name": first, "last_name": "Katz", "email": first + "@example.org", "member": true,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	return body["id"].(string)
}

func (h *harness) addCard(t *testing.T, personID string) string {
	t.Helper()
	h.gw.EXPECT().SaveMethod(gomock.Any(), gomock.Any()).
		Return(gateway.SavedMethod{Token: "tok_" + personID, Brand: "Visa", Last4: "4242"}, nil)
	status, body := h.do(t, http.MethodPost, "/people/"+personID+"/payment-methods", fiber.Map{"token": "sut_1", "exp_month": 9, "exp_year": 2030})
	require.Equal(t, fiber.StatusCreated, status, body)
	return body["id"].(string)
}

func invoiceOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	invoices, ok := body["invoices"].([]any)
	require.True(t, ok, body)
	require.Len(t, invoices, 1)
	return invoices[0].(map[string]any)
}

func TestInvoicePaymentFlow(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	h.configureProcessor(t)
	person := h.createPerson(t, "Moshe")
	method := h.addCard(t, person)

	status, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person,
		"issue":     true,
		"items": []fiber.Map{
			{"description": "Aliyah", "quantity": "1", "unit_price": "100"},
			{"description": "Kiddush sponsorship", "quantity": "2", "unit_price": "25"},
		},
	})
	require.Equal(t, fiber.StatusCreated, status, inv)
	assert.Equal(t, "150", inv["total"])
	assert.Equal(t, "sent", inv["status"])
	id := inv["id"].(string)

	h.gw.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(gateway.ChargeResult{Reference: "ref-1"}, nil)
	status, body := h.do(t, http.MethodPost, "/invoices/"+id+"/payments", fiber.Map{"amount": "50", "payment_method_id": method})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "100", invoiceOf(t, body)["balance"])
	assert.Equal(t, "partial", invoiceOf(t, body)["status"])

	h.gw.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(gateway.ChargeResult{Reference: "ref-2"}, nil)
	status, body = h.do(t, http.MethodPost, "/invoices/"+id+"/payments", fiber.Map{"payment_method_id": method})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "0", invoiceOf(t, body)["balance"])
	assert.Equal(t, "paid", invoiceOf(t, body)["status"])

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/void", nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = h.do(t, http.MethodGet, "/invoices/"+id+"/versions", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["versions"], 3)

	status, body = h.do(t, http.MethodGet, "/invoices/"+id+"/payments", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["payments"], 2)

	status, body = h.do(t, http.MethodGet, "/invoices/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, "150", body["paid"])
	assert.Equal(t, false, body["can_void"])
}

func TestPayInvoiceDecline(t *testing.T) {
	h := newHarness(t, models.RoleGabbai)
	h.configureProcessorAsAdmin(t)
	person := h.createPerson(t, "Dovid")
	method := h.addCard(t, person)

	_, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person, "issue": true,
		"items": []fiber.Map{{"description": "Seat", "quantity": "1", "unit_price": "360"}},
	})
	id := inv["id"].(string)

	h.gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return(gateway.ChargeResult{}, &gateway.DeclineError{Processor: "cardknox", Message: "Insufficient funds"})
	status, body := h.do(t, http.MethodPost, "/invoices/"+id+"/payments", fiber.Map{"amount": "100", "payment_method_id": method})
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Contains(t, body["message"], "Insufficient funds")

	_, got := h.do(t, http.MethodGet, "/invoices/"+id, nil)
	assert.Equal(t, "360", got["balance"])
	assert.Equal(t, "sent", got["status"])
}

// configureProcessorAsAdmin writes the config directly, for harnesses
// running with a non-admin role.
func (h *harness) configureProcessorAsAdmin(t *testing.T) {
	t.Helper()
	_, key := deps()
	sealed, err := utils.Seal(key, []byte("ck_live_secret"))
	require.NoError(t, err)
	require.NoError(t, h.store.SaveProcessorConfig(context.Background(), &models.ProcessorConfig{Processor: "cardknox", APIKeySealed: sealed}))
}

func TestCreateInvoiceRejected(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Yaakov")

	status, _ := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"items": []fiber.Map{{"description": "Aliyah", "quantity": "1", "unit_price": "18"}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "missing payer")

	status, _ = h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person,
		"items":     []fiber.Map{{"description": "Nothing", "quantity": "1", "unit_price": "0"}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "zero total")

	status, _ = h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": "no-such-person",
		"items":     []fiber.Map{{"description": "Aliyah", "quantity": "1", "unit_price": "18"}},
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCreateInvoiceLineQuantities(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Shmuel")

	status, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person,
		"items": []fiber.Map{
			{"description": "Waived seat", "quantity": "0", "unit_price": "100"},
			{"description": "Aliyah", "quantity": "1", "unit_price": "50"},
			{"description": "Yahrzeit plaque", "unit_price": "18"},
		},
	})
	require.Equal(t, fiber.StatusCreated, status, inv)
	assert.Equal(t, "68", inv["total"])
	items := inv["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "0", items[0].(map[string]any)["amount"])
	assert.Equal(t, "1", items[2].(map[string]any)["quantity"])

	status, inv = h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person,
		"items": []fiber.Map{
			{"description": "Candles", "quantity": "0.333", "unit_price": "1"},
			{"description": "Candles", "quantity": "0.333", "unit_price": "1"},
			{"description": "Candles", "quantity": "0.333", "unit_price": "1"},
		},
	})
	require.Equal(t, fiber.StatusCreated, status, inv)

	status, got := h.do(t, http.MethodGet, "/invoices/"+inv["id"].(string), nil)
	require.Equal(t, fiber.StatusOK, status, got)
	sum := decimal.Zero
	for _, it := range got["items"].([]any) {
		sum = sum.Add(decimal.RequireFromString(it.(map[string]any)["amount"].(string)))
	}
	total := decimal.RequireFromString(got["total"].(string))
	assert.True(t, sum.Equal(total), "items sum to %s, total is %s", sum, total)
	assert.Equal(t, "0.99", total.StringFixed(2))
}

func TestSendAndVoidWithVersion(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Chaim")
	_, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person,
		"items":     []fiber.Map{{"description": "Yizkor", "quantity": "1", "unit_price": "52"}},
	})
	require.Equal(t, "draft", inv["status"])
	id := inv["id"].(string)

	status, body := h.do(t, http.MethodPost, "/invoices/"+id+"/send?version=1", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "sent", body["status"])
	assert.EqualValues(t, 2, body["version"])

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/void?version=1", nil)
	assert.Equal(t, fiber.StatusConflict, status, "stale version")

	status, body = h.do(t, http.MethodPost, "/invoices/"+id+"/void?version=2", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "void", body["status"])

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/void", nil)
	assert.Equal(t, fiber.StatusConflict, status, "void is terminal")

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/send?version=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = h.do(t, http.MethodGet, "/invoices?status=void", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, _ = h.do(t, http.MethodGet, "/invoices?status=refunded", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestManualPaymentAndBalances(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Shmuel")
	_, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person, "issue": true,
		"items": []fiber.Map{{"description": "Membership", "quantity": "1", "unit_price": "1200"}},
	})
	id := inv["id"].(string)

	status, body := h.do(t, http.MethodPost, "/invoices/"+id+"/payments/manual", fiber.Map{
		"amount": "200", "method": "check", "reference": "#1043",
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/payments/manual", fiber.Map{"amount": "5", "method": "bitcoin"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = h.do(t, http.MethodPost, "/invoices/"+id+"/payments/manual", fiber.Map{"amount": "5000", "method": "cash"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "overpayment")

	status, body = h.do(t, http.MethodGet, "/people/"+person+"/balance", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1000", body["balance"])

	status, body = h.do(t, http.MethodGet, "/balances", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["balances"], 1)
}

func TestProcessorConfig(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	status, _ := h.do(t, http.MethodGet, "/processor", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	h.configureProcessor(t)
	status, body := h.do(t, http.MethodGet, "/processor", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cardknox", body["processor"])
	assert.Equal(t, "ifields_pub", body["public_key"])
	assert.NotContains(t, body, "api_key")

	status, _ = h.do(t, http.MethodPut, "/processor", fiber.Map{"processor": "paypal", "api_key": "whatever-key"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestProcessorConfigNeedsAdmin(t *testing.T) {
	h := newHarness(t, models.RoleGabbai)
	status, _ := h.do(t, http.MethodPut, "/processor", fiber.Map{"processor": "stripe", "api_key": "sk_test_123456"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestDefaultPaymentMethodSwitch(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	h.configureProcessor(t)
	person := h.createPerson(t, "Reuven")
	first := h.addCard(t, person)
	second := h.addCard(t, person)

	status, body := h.do(t, http.MethodPut, "/people/"+person+"/payment-methods/"+second+"/default", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	methods := body["payment_methods"].([]any)
	require.Len(t, methods, 2)
	defaults := 0
	for _, m := range methods {
		mm := m.(map[string]any)
		if mm["is_default"] == true {
			defaults++
			assert.Equal(t, second, mm["id"])
		} else {
			assert.Equal(t, first, mm["id"])
		}
	}
	assert.Equal(t, 1, defaults)

	status, _ = h.do(t, http.MethodPut, "/people/"+person+"/payment-methods/nope/default", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHonorsBilling(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Levi")

	status, _ := h.do(t, http.MethodPost, "/honor-types", []fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, types := h.doList(t, http.MethodPost, "/honor-types", []fiber.Map{
		{"name": "Aliyah", "default_amount": "18"},
		{"name": "Pesicha", "default_amount": "36"},
	})
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, types, 2)

	for _, ht := range types {
		status, body := h.do(t, http.MethodPost, "/honors", fiber.Map{
			"honor_type_id": ht.(map[string]any)["id"],
			"person_id":     person,
			"occasion":      "Shabbos Noach",
			"honor_date":    "2024-11-02T00:00:00Z",
		})
		require.Equal(t, fiber.StatusCreated, status, body)
	}

	status, inv := h.do(t, http.MethodPost, "/honors/bill", fiber.Map{"person_id": person, "issue": true})
	require.Equal(t, fiber.StatusCreated, status, inv)
	assert.Equal(t, "54", inv["total"])
	assert.Len(t, inv["items"], 2)

	status, _ = h.do(t, http.MethodPost, "/honors/bill", fiber.Map{"person_id": person})
	assert.Equal(t, fiber.StatusConflict, status, "nothing left to bill")
}

func (h *harness) doList(t *testing.T, method, path string, body any) (int, []any) {
	t.Helper()
	blob, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPeopleSearchAndUpdate(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	id := h.createPerson(t, "Avraham")
	h.createPerson(t, "Yitzchak")

	status, body := h.do(t, http.MethodGet, "/people?search=avra", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, body = h.do(t, http.MethodPatch, "/people/"+id, fiber.Map{"hebrew_name": "  Avraham ben Terach  "})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Avraham ben Terach", body["hebrew_name"])
	assert.Equal(t, "Katz", body["last_name"])

	status, _ = h.do(t, http.MethodPatch, "/people/"+id, fiber.Map{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestCampaignRaised(t *testing.T) {
	h := newHarness(t, models.RoleAdmin)
	person := h.createPerson(t, "Naftali")
	status, campaign := h.do(t, http.MethodPost, "/campaigns", fiber.Map{"name": "Building Fund", "goal": "100000"})
	require.Equal(t, fiber.StatusCreated, status, campaign)
	cid := campaign["id"].(string)

	_, inv := h.do(t, http.MethodPost, "/invoices", fiber.Map{
		"person_id": person, "campaign_id": cid, "issue": true,
		"items": []fiber.Map{{"description": "Pledge", "quantity": "1", "unit_price": "500"}},
	})
	status, body := h.do(t, http.MethodPost, "/invoices/"+inv["id"].(string)+"/payments/manual", fiber.Map{"amount": "180", "method": "cash"})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = h.do(t, http.MethodGet, "/campaigns/"+cid, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "180", body["raised"])
	assert.Equal(t, "Building Fund", body["name"])
}
