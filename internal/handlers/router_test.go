package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/services"
	"bookkeeper/internal/testutil"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *apiClient) do(method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Body.Len() == 0 {
		return rec, nil
	}
	return rec, parseJSON(a.t, rec)
}

func (a *apiClient) register(email string) (string, string) {
	a.t.Helper()
	rec, body := a.do("POST", "/auth/register", `{"email":"`+email+`","password":"password123"}`)
	assertStatus(a.t, rec, http.StatusCreated)
	return body["token"].(string), body["user"].(map[string]interface{})["id"].(string)
}

func TestRouter_ExpenseFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	groupSvc := services.NewGroupService(db)
	recurringSvc := services.NewRecurringService(db)
	router := NewRouter(Services{
		Users:     services.NewUserService(db),
		Groups:    groupSvc,
		Sources:   services.NewSourceService(db),
		Expenses:  services.NewExpenseService(db, recurringSvc),
		Recurring: recurringSvc,
		Audit:     services.NewAuditService(db),
	})

	api := &apiClient{t: t, router: router}
	aliceToken, aliceID := api.register("alice@example.com")
	bobToken, bobID := api.register("bob@example.com")
	api.token = aliceToken

	rec, body := api.do("POST", "/groups", `{"name":"Flat"}`)
	assertStatus(t, rec, http.StatusCreated)
	groupID := body["group"].(map[string]interface{})["id"].(string)
	base := "/groups/" + groupID

	// bob is not a member yet
	bob := &apiClient{t: t, router: router, token: bobToken}
	rec, body = bob.do("GET", base+"/sources", "")
	assertStatus(t, rec, http.StatusForbidden)
	assertErrorCode(t, body, "FORBIDDEN")

	rec, _ = api.do("POST", base+"/users", `{"user_id":"`+bobID+`"}`)
	assertStatus(t, rec, http.StatusNoContent)

	rec, body = api.do("POST", base+"/sources", fmt.Sprintf(
		`{"name":"Joint","users":[{"user_id":"%s","share":1},{"user_id":"%s","share":1}]}`, aliceID, bobID))
	assertStatus(t, rec, http.StatusCreated)
	sourceID := body["source"].(map[string]interface{})["id"].(string)

	rec, body = api.do("POST", base+"/expenses/division", `{"source_id":"`+sourceID+`","type":"expense","sum":"10.01"}`)
	assertStatus(t, rec, http.StatusOK)
	if n := len(body["division"].([]interface{})); n != 4 {
		t.Fatalf("expected 4 division items, got %d", n)
	}

	rec, body = api.do("POST", base+"/expenses", `{"source_id":"`+sourceID+`","type":"expense","title":"Rent","sum":"800","date":"2024-01-31"}`)
	assertStatus(t, rec, http.StatusCreated)
	expenseID := body["expense"].(map[string]interface{})["id"].(string)

	rec, _ = api.do("POST", base+"/expenses/"+expenseID+"/recurring", `{"period_amount":1,"period_unit":"months"}`)
	assertStatus(t, rec, http.StatusCreated)

	// listing a past month backfills the series up to its end
	rec, body = api.do("GET", base+"/expenses/month?year=2024&month=3", "")
	assertStatus(t, rec, http.StatusOK)
	data := body["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 expense in March, got %d", len(data))
	}
	march := data[0].(map[string]interface{})
	if date, _ := march["date"].(string); !strings.HasPrefix(date, "2024-03-29") || march["sum"] != "800.00" {
		t.Errorf("unexpected March occurrence %v", march)
	}

	rec, body = bob.do("DELETE", base+"/expenses/recurring/"+march["id"].(string)+"?target=after", "")
	assertStatus(t, rec, http.StatusOK)
	if body["count"] != float64(2) {
		t.Errorf("expected March and the template deleted, got %v", body["count"])
	}

	rec, body = api.do("GET", base+"/expenses/month?year=2024&month=4", "")
	assertStatus(t, rec, http.StatusOK)
	if body["total_items"] != float64(0) {
		t.Errorf("expected series ended before April, got %v", body["total_items"])
	}

	rec, _ = api.do("GET", "/profile", "")
	assertStatus(t, rec, http.StatusOK)
}

func TestRouter_RequiresAuth(t *testing.T) {
	router := NewRouter(Services{
		Users:     &mockUserService{},
		Groups:    &mockGroupService{},
		Sources:   &mockSourceService{},
		Expenses:  &mockExpenseService{},
		Recurring: &mockRecurringService{},
		Audit:     &mockAuditService{},
	})
	api := &apiClient{t: t, router: router}

	rec, body := api.do("GET", "/groups", "")
	assertStatus(t, rec, http.StatusUnauthorized)
	assertErrorCode(t, body, "UNAUTHORIZED")

	req := httptest.NewRequest("GET", "/api/health", nil)
	hrec := httptest.NewRecorder()
	router.ServeHTTP(hrec, req)
	assertStatus(t, hrec, http.StatusOK)

	req = httptest.NewRequest("GET", "/metrics", nil)
	mrec := httptest.NewRecorder()
	router.ServeHTTP(mrec, req)
	assertStatus(t, mrec, http.StatusOK)
	if !strings.Contains(mrec.Body.String(), "bookkeeper_http_request_duration_seconds") {
		t.Error("expected request histogram in metrics output")
	}
}
