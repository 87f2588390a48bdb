package handler

import (
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/production/service"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/testutil"
)

func setupOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, clock.System{}, zap.NewNop())
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/orders", handlers.Order.Create)
	api.GET("/orders", handlers.Order.List)
	api.GET("/orders/:id", handlers.Order.Get)
	api.PUT("/orders/:id/status", handlers.Order.UpdateStatus)
	api.POST("/orders/:id/progress", handlers.Progress.Initialize)
	api.GET("/orders/:id/progress", handlers.Progress.GetByOrder)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedOrderTestData(t *testing.T, env *testutil.TestEnv) (productID string) {
	t.Helper()

	product := &entity.Product{
		ID:          "prod-test-001",
		Code:        "PRD-202603-0001",
		Description: "Vestido midi",
		OwnerID:     "test-owner-001",
	}
	if err := env.DB.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}

	stages := []entity.StageDefinition{
		{ID: "stage-t-corte", Name: "Corte", SeqOrder: 1, OwnerID: "test-owner-001"},
		{ID: "stage-t-costura", Name: "Costura", SeqOrder: 2, OwnerID: "test-owner-001"},
	}
	for i := range stages {
		if err := env.DB.Create(&stages[i]).Error; err != nil {
			t.Fatalf("Failed to seed stage: %v", err)
		}
	}

	return product.ID
}

func TestCreateOrder(t *testing.T) {
	env := setupOrderTest(t)
	productID := seedOrderTestData(t, env)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"product_id": productID,
		"priority":   "high",
		"grade": []map[string]interface{}{
			{"color_id": "c1", "color_name": "Vermelho", "quantities_by_size": map[string]int{"P": 10, "M": 20}},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	code := data["code"].(string)
	if !strings.HasPrefix(code, "OP-") {
		t.Errorf("order code should carry the OP prefix, got %q", code)
	}
	if data["status"] != entity.OrderStatusPlanned {
		t.Errorf("new order should be planned, got %v", data["status"])
	}
}

func TestCreateOrderRejectsEmptyGrade(t *testing.T) {
	env := setupOrderTest(t)
	productID := seedOrderTestData(t, env)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"product_id": productID,
		"grade":      []map[string]interface{}{},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty grade, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateOrderRejectsMalformedDate(t *testing.T) {
	env := setupOrderTest(t)
	productID := seedOrderTestData(t, env)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"product_id":    productID,
		"expected_date": "15/04/2026",
		"grade": []map[string]interface{}{
			{"color_id": "c1", "color_name": "Azul", "quantities_by_size": map[string]int{"M": 10}},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed expected_date, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	env := setupOrderTest(t)
	productID := seedOrderTestData(t, env)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"product_id": productID,
		"grade": []map[string]interface{}{
			{"color_id": "c1", "color_name": "Preto", "quantities_by_size": map[string]int{"M": 40}},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", body, token)
	resp := testutil.ParseResponse(w)
	orderID := resp["data"].(map[string]interface{})["id"].(string)

	// planned → completed skips a step: rejected.
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"status": "completed"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for planned→completed, got %d: %s", w.Code, w.Body.String())
	}

	// planned → in_production: allowed.
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"status": "in_production"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for planned→in_production, got %d: %s", w.Code, w.Body.String())
	}

	// in_production → completed: allowed.
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"status": "completed"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for in_production→completed, got %d: %s", w.Code, w.Body.String())
	}

	// completed is terminal.
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"status": "in_production"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 out of completed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProgressEndpoints(t *testing.T) {
	env := setupOrderTest(t)
	productID := seedOrderTestData(t, env)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"product_id": productID,
		"grade": []map[string]interface{}{
			{"color_id": "c1", "color_name": "Azul", "quantities_by_size": map[string]int{"M": 50}},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", body, token)
	orderID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// No record yet.
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+orderID+"/progress", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before initialization, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders/"+orderID+"/progress", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 on initialize, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})

	current, ok := data["current_stage"].(map[string]interface{})
	if !ok || current["stage_name"] != "Corte" {
		t.Errorf("current stage should be Corte, got %v", data["current_stage"])
	}
	if data["is_paused"] != false {
		t.Errorf("fresh record should not be paused")
	}
	next, ok := data["next_stage"].(map[string]interface{})
	if !ok || next["stage_name"] != "Costura" {
		t.Errorf("next stage should be Costura, got %v", data["next_stage"])
	}
}
