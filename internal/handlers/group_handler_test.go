package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
	"bookkeeper/internal/services"
)

func setupGroupRouter(groups *mockGroupService, sources *mockSourceService, audit *mockAuditService) *gin.Engine {
	gh := NewGroupHandler(groups, audit)
	sh := NewSourceHandler(sources, audit)

	r := gin.New()
	r.POST("/groups", injectContext(testUserID, ""), gh.CreateGroup)
	r.GET("/groups", injectContext(testUserID, ""), gh.GetGroups)
	g := r.Group("/groups/:groupId", injectContext(testUserID, testGroupID))
	g.POST("/users", gh.AddMember)
	g.POST("/sources", sh.CreateSource)
	g.GET("/sources", sh.GetSources)
	g.GET("/sources/:id", sh.GetSource)
	return r
}

func TestGroupHandler(t *testing.T) {
	t.Run("create returns 201 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		groups := &mockGroupService{
			createGroupFn: func(ownerID, name string) (*models.Group, error) {
				if ownerID != testUserID {
					t.Errorf("expected owner %s, got %s", testUserID, ownerID)
				}
				return &models.Group{Base: models.Base{ID: testGroupID}, Name: name}, nil
			},
		}
		r := setupGroupRouter(groups, &mockSourceService{}, audit)

		rec := doRequest(r, "POST", "/groups", `{"name":"Flat"}`)

		assertStatus(t, rec, http.StatusCreated)
		if got := audit.actions(); len(got) != 1 || got[0] != "CREATE_GROUP" {
			t.Errorf("expected CREATE_GROUP audit, got %v", got)
		}
	})

	t.Run("create returns 400 without name", func(t *testing.T) {
		r := setupGroupRouter(&mockGroupService{}, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "POST", "/groups", `{}`)

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("list returns groups of the user", func(t *testing.T) {
		groups := &mockGroupService{
			getUserGroupsFn: func(string) ([]models.Group, error) {
				return []models.Group{{Name: "A"}, {Name: "B"}}, nil
			},
		}
		r := setupGroupRouter(groups, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "GET", "/groups", "")

		assertStatus(t, rec, http.StatusOK)
		if n := len(parseJSON(t, rec)["groups"].([]interface{})); n != 2 {
			t.Errorf("expected 2 groups, got %d", n)
		}
	})

	t.Run("add member returns 204", func(t *testing.T) {
		var added string
		groups := &mockGroupService{
			addMemberFn: func(groupID, userID string) error {
				added = userID
				return nil
			},
		}
		r := setupGroupRouter(groups, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/users", `{"user_id":"`+testOtherID+`"}`)

		assertStatus(t, rec, http.StatusNoContent)
		if added != testOtherID {
			t.Errorf("expected %s added, got %s", testOtherID, added)
		}
	})

	t.Run("add member returns 404 for unknown user", func(t *testing.T) {
		groups := &mockGroupService{
			addMemberFn: func(_, _ string) error { return apperrors.ErrUserNotFound },
		}
		r := setupGroupRouter(groups, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/users", `{"user_id":"`+testOtherID+`"}`)

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}

func TestSourceHandler(t *testing.T) {
	t.Run("create keeps user order", func(t *testing.T) {
		var got []services.SourceShare
		sources := &mockSourceService{
			createSourceFn: func(groupID, name string, shares []services.SourceShare) (*models.Source, error) {
				got = shares
				return &models.Source{Base: models.Base{ID: testSourceID}, GroupID: groupID, Name: name}, nil
			},
		}
		r := setupGroupRouter(&mockGroupService{}, sources, &mockAuditService{})

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/sources",
			`{"name":"Joint","users":[{"user_id":"`+testOtherID+`","share":2},{"user_id":"`+testUserID+`","share":1}]}`)

		assertStatus(t, rec, http.StatusCreated)
		if len(got) != 2 || got[0].UserID != testOtherID || got[0].Share != 2 || got[1].UserID != testUserID {
			t.Errorf("unexpected shares %+v", got)
		}
	})

	t.Run("create returns 400 on negative share", func(t *testing.T) {
		r := setupGroupRouter(&mockGroupService{}, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/sources",
			`{"name":"Joint","users":[{"user_id":"`+testUserID+`","share":-1}]}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("get returns 400 on malformed id", func(t *testing.T) {
		r := setupGroupRouter(&mockGroupService{}, &mockSourceService{}, &mockAuditService{})

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/sources/12", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("get returns 404 when missing", func(t *testing.T) {
		sources := &mockSourceService{
			getSourceByIDFn: func(_, _ string) (*models.Source, error) { return nil, apperrors.ErrSourceNotFound },
		}
		r := setupGroupRouter(&mockGroupService{}, sources, &mockAuditService{})

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/sources/"+testSourceID, "")

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "SOURCE_NOT_FOUND")
	})

	t.Run("list", func(t *testing.T) {
		sources := &mockSourceService{
			getGroupSourcesFn: func(string) ([]models.Source, error) { return []models.Source{{Name: "Joint"}}, nil },
		}
		r := setupGroupRouter(&mockGroupService{}, sources, &mockAuditService{})

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/sources", "")

		assertStatus(t, rec, http.StatusOK)
	})
}
