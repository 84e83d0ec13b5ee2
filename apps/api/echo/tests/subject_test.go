package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/user"
	testutil "github.com/PeaceIshola/eduhub/tests"
)

func Test_subjectApi_browse(t *testing.T) {
	app := setup(t)

	bst := testutil.CreateSubject(t, subjRepo, "BST", "Basic Science & Technology")
	math := testutil.CreateSubject(t, subjRepo, "MATH", "Mathematics")
	pvs := testutil.CreateSubject(t, subjRepo, "PVS", "Pre-Vocational Studies")

	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.ng", "", []user.Role{user.RoleStudent}, true)

	tests := []httpTest{
		{
			name: "anonymous can browse the catalogue", path: "/v1/subjects",
			wantCode: http.StatusOK, wantData: marchallList(t, bst, math, pvs),
		},
		{
			name: "signed-in free user can browse the catalogue", path: "/v1/subjects", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, bst, math, pvs),
		},
		{
			name: "anonymous can view one subject", path: "/v1/subjects/MATH",
			wantCode: http.StatusOK, wantData: marchallObj(t, math),
		},
		{
			name: "unknown subject code", path: "/v1/subjects/NOPE",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_subjectApi_manage(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []user.Role{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.ng", "", []user.Role{user.RoleStudent}, true)

	t.Run("admin can create a subject", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Code: "ENG", Name: "English Studies"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sub subject.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, "ENG", sub.Code)
		assert.NotEmpty(t, sub.ID)
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		testutil.CreateSubject(t, subjRepo, "NV", "National Values")
		body := marchallObj(t, subject.NewSubject{Code: "NV", Name: "National Values Again"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lowercase code is rejected", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Code: "eng", Name: "English Studies"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student cannot create a subject", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Code: "CCA", Name: "Cultural & Creative Arts"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous cannot create a subject", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Code: "CCA", Name: "Cultural & Creative Arts"})
		req, rec := newRequest(http.MethodPost, "/v1/subjects", body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
