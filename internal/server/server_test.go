package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/database/dbtest"
	"github.com/vitcanteen/canteen-backend/internal/repository"
	"github.com/vitcanteen/canteen-backend/internal/seed"
	"github.com/vitcanteen/canteen-backend/internal/server"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

const (
	ownerEmail   = "canteen@vit.edu"
	studentEmail = "harshad.1251090072@vit.edu"
	studentPRN   = "1251090072"
)

func newApp(t *testing.T, mutate ...func(*config.Config)) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		DBDriver:           "sqlite",
		OwnerEmail:         ownerEmail,
		OwnerSecret:        "canteen",
		StudentEmailDomain: "vit.edu",
		PRNLength:          10,
		JWTAccessExpiry:    time.Hour,
		TaxRate:            "0.05",
		TotalCheck:         config.TotalCheckFlag,
		OrderValidity:      2 * time.Hour,
		LogRetentionDays:   30,
		CORSOrigins:        "*",
		AppEnv:             "test",
	}
	for _, m := range mutate {
		m(cfg)
	}

	db := dbtest.New(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	_, err := seed.Users(ctx, users, services.NewAuthService(users, cfg), cfg, seed.Students[:2])
	require.NoError(t, err)
	require.NoError(t, seed.Catalog(ctx, repository.NewMenuRepository(db), seed.Menu))

	app, err := server.New(cfg, db, nil)
	require.NoError(t, err)
	return app
}

type response struct {
	Status int
	Body   map[string]any
}

func call(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func ownerHeader() map[string]string {
	return map[string]string{"X-Owner-Email": ownerEmail}
}

func login(t *testing.T, app *fiber.App, email, password string) map[string]any {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	return resp.Body
}

func studentID(t *testing.T, app *fiber.App) string {
	t.Helper()
	user := login(t, app, studentEmail, studentPRN)["user"].(map[string]any)
	return user["id"].(string)
}

func placeOrder(t *testing.T, app *fiber.App, userID string) map[string]any {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/orders", map[string]any{
		"userId": userID,
		"items":  []map[string]any{{"id": "samosa", "name": "Samosa", "unitPrice": 20, "quantity": 2}},
		"total":  42,
	}, nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	return resp.Body
}

func TestHealthz(t *testing.T) {
	app := newApp(t)

	resp := call(t, app, http.MethodGet, "/api/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ok", resp.Body["status"])
	assert.Equal(t, "ok", resp.Body["db"])
	assert.NotEmpty(t, resp.Body["timestamp"])
}

func TestMenu(t *testing.T) {
	app := newApp(t)

	resp := call(t, app, http.MethodGet, "/api/menu", nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	items := resp.Body["items"].([]any)
	require.Len(t, items, len(seed.Menu))
	assert.Equal(t, "samosa", items[0].(map[string]any)["id"])
}

func TestLogin(t *testing.T) {
	app := newApp(t)

	body := login(t, app, "Harshad.1251090072@VIT.EDU", studentPRN)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "STUDENT", user["role"])
	assert.Equal(t, "Harshad Pawar", user["full_name"])
	assert.NotContains(t, user, "secret")
	assert.NotContains(t, body, "access_token")

	owner := login(t, app, ownerEmail, "canteen")["user"].(map[string]any)
	assert.Equal(t, "OWNER", owner["role"])

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		message  string
	}{
		{"bad format", "harshad@gmail.com", "x", http.StatusBadRequest, "Invalid email format"},
		{"wrong secret", studentEmail, "0000000000", http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", "nobody.1234567890@vit.edu", "1234567890", http.StatusUnauthorized, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/login", map[string]string{"email": tt.email, "password": tt.password}, nil)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, false, resp.Body["success"])
			assert.Equal(t, tt.message, resp.Body["error"])
		})
	}
}

func TestCreateOrder(t *testing.T) {
	app := newApp(t)
	userID := studentID(t, app)

	body := placeOrder(t, app, userID)
	assert.Equal(t, true, body["success"])

	order := body["order"].(map[string]any)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "CASH", order["payment_method"])
	assert.Equal(t, "CASH", order["payment_status"])
	assert.Equal(t, userID, order["user_id"])
	assert.Equal(t, 42.0, order["total"])

	receipt := body["receipt"].(map[string]any)
	assert.Equal(t, order["id"], receipt["orderId"])
	assert.Equal(t, "Harshad Pawar", receipt["studentName"])
	assert.Equal(t, "PENDING", receipt["paymentStatus"])

	resp := call(t, app, http.MethodPost, "/api/orders", map[string]any{"userId": userID, "items": []any{}, "total": 10}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, false, resp.Body["success"])
}

func TestCreateOrder_KeepsCartItemsAsSent(t *testing.T) {
	app := newApp(t)
	userID := studentID(t, app)

	cart := `[
		{"id": "3", "name": "Samosa", "price": 20, "quantity": 2, "image": "/menu/samosa.jpg", "category": "Snacks"},
		{"id": 11, "name": "Cold Coffee", "price": 2, "quantity": 1, "image": "", "category": "Beverages"}
	]`
	resp := call(t, app, http.MethodPost, "/api/orders", map[string]any{
		"userId":        userID,
		"items":         json.RawMessage(cart),
		"total":         44,
		"paymentMethod": "UPI",
	}, nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	assert.JSONEq(t, cart, reencode(t, resp.Body["order"].(map[string]any)["items"]))
	assert.JSONEq(t, cart, reencode(t, resp.Body["receipt"].(map[string]any)["items"]))

	resp = call(t, app, http.MethodGet, "/api/orders/"+userID, nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	orders := resp.Body["orders"].([]any)
	require.Len(t, orders, 1)
	assert.JSONEq(t, cart, reencode(t, orders[0].(map[string]any)["items"]))
}

func reencode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestOrderLists(t *testing.T) {
	app := newApp(t)
	userID := studentID(t, app)
	placeOrder(t, app, userID)
	placeOrder(t, app, userID)

	resp := call(t, app, http.MethodGet, "/api/orders/"+userID, nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Body["orders"], 2)

	resp = call(t, app, http.MethodGet, "/api/orders/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/orders/all", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Unauthorized", resp.Body["error"])

	resp = call(t, app, http.MethodGet, "/api/orders/all", nil, map[string]string{"X-Owner-Email": studentEmail})
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/orders/all", nil, ownerHeader())
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Body["orders"], 2)
}

func TestUpdateStatus(t *testing.T) {
	app := newApp(t)
	orderID := placeOrder(t, app, studentID(t, app))["order"].(map[string]any)["id"].(string)
	path := "/api/orders/" + orderID

	resp := call(t, app, http.MethodPatch, path, map[string]string{"status": "ACCEPTED"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodPatch, path, map[string]string{"status": "pending"}, ownerHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Invalid status", resp.Body["error"])

	resp = call(t, app, http.MethodPatch, path, map[string]string{"status": "CANCELLED"}, ownerHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodPatch, path, map[string]string{"status": "READY"}, ownerHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodPatch, path, map[string]string{"status": "ACCEPTED"}, ownerHeader())
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	assert.Equal(t, "ACCEPTED", resp.Body["order"].(map[string]any)["status"])

	resp = call(t, app, http.MethodPatch, path, map[string]string{"status": "ACCEPTED"}, ownerHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, app, http.MethodPatch, "/api/orders/7d0f0b7e-0000-4000-8000-000000000000",
		map[string]string{"status": "ACCEPTED"}, ownerHeader())
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestCancel(t *testing.T) {
	app := newApp(t)
	userID := studentID(t, app)
	orderID := placeOrder(t, app, userID)["order"].(map[string]any)["id"].(string)
	path := fmt.Sprintf("/api/orders/%s/cancel", orderID)

	resp := call(t, app, http.MethodPatch, path, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = call(t, app, http.MethodPatch, path, map[string]string{"userId": "5b1c8f36-6b8e-4c55-9d0e-2f2f9d6d1a10"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodPatch, path, map[string]string{"userId": userID}, nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	assert.Equal(t, "CANCELLED", resp.Body["order"].(map[string]any)["status"])

	resp = call(t, app, http.MethodPatch, path, map[string]string{"userId": userID}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body["error"], "already processed")
}

func TestAccessTokens(t *testing.T) {
	app := newApp(t, func(c *config.Config) { c.JWTSecret = "test-secret" })

	ownerToken := login(t, app, ownerEmail, "canteen")["access_token"].(string)
	require.NotEmpty(t, ownerToken)

	resp := call(t, app, http.MethodGet, "/api/orders/all", nil, map[string]string{"Authorization": "Bearer " + ownerToken})
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/orders/all", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	student := login(t, app, studentEmail, studentPRN)
	studentToken := student["access_token"].(string)
	userID := student["user"].(map[string]any)["id"].(string)
	orderID := placeOrder(t, app, userID)["order"].(map[string]any)["id"].(string)
	bearer := map[string]string{"Authorization": "Bearer " + studentToken}

	resp = call(t, app, http.MethodGet, "/api/orders/all", nil, bearer)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	forSomeoneElse := map[string]any{
		"userId": "0b4a6a1e-3c1d-4f4e-9a55-6f0f4f3d2c11",
		"items":  []map[string]any{{"id": "samosa", "name": "Samosa", "unitPrice": 20, "quantity": 2}},
		"total":  42,
	}
	resp = call(t, app, http.MethodPost, "/api/orders", forSomeoneElse, bearer)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	forSomeoneElse["userId"] = userID
	resp = call(t, app, http.MethodPost, "/api/orders", forSomeoneElse,
		map[string]string{"Authorization": "Bearer " + ownerToken})
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodPost, "/api/orders", forSomeoneElse, bearer)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, app, http.MethodGet, "/api/orders/0b4a6a1e-3c1d-4f4e-9a55-6f0f4f3d2c11", nil, bearer)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, app, http.MethodPatch, "/api/orders/"+orderID+"/cancel", nil, bearer)
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	assert.Equal(t, "CANCELLED", resp.Body["order"].(map[string]any)["status"])
}
