package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/entitlement"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
	testutil "github.com/PeaceIshola/eduhub/tests"
)

type deniedResp struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func signInResp() deniedResp {
	return deniedResp{Error: "authentication required", Redirect: core.Conf.FrontendBaseURL + "/login"}
}

func upgradeResp() deniedResp {
	return deniedResp{Error: "premium subscription required", Redirect: core.Conf.FrontendBaseURL + "/upgrade"}
}

func Test_contentApi_featureAccess(t *testing.T) {
	app := setup(t)

	math := testutil.CreateSubject(t, subjRepo, "MATH", "Mathematics")
	testutil.CreateSubject(t, subjRepo, "BST", "Basic Science & Technology")

	now := time.Now().UTC()
	future := now.Add(90 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	freeStudent := testutil.CreateUser(t, usrRepo, "Free", "freeguy", "free@test.ng", "", []user.Role{user.RoleStudent}, true)
	testutil.CreateSubscription(t, subRepo, freeStudent.ID, math.ID,
		subscription.TierFree, subscription.StatusActive, now.Add(-24*time.Hour), nil)

	premiumStudent := testutil.CreateUser(t, usrRepo, "Premium", "premiumgal", "premium@test.ng", "", []user.Role{user.RoleStudent}, true)
	testutil.CreateSubscription(t, subRepo, premiumStudent.ID, math.ID,
		subscription.TierPremium, subscription.StatusActive, now.Add(-24*time.Hour), &future)

	lapsedStudent := testutil.CreateUser(t, usrRepo, "Lapsed", "lapsedguy", "lapsed@test.ng", "", []user.Role{user.RoleStudent}, true)
	testutil.CreateSubscription(t, subRepo, lapsedStudent.ID, math.ID,
		subscription.TierPremium, subscription.StatusActive, now.Add(-366*24*time.Hour), &past)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.ng", "", []user.Role{user.RoleTeacher}, true)
	testutil.CreateSubscription(t, subRepo, teacher.ID, math.ID,
		subscription.TierPremium, subscription.StatusActive, now.Add(-366*24*time.Hour), &past)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.ng", "", []user.Role{user.RoleAdmin}, true)

	inactiveTeacher := testutil.CreateUser(t, usrRepo, "Gone", "goneteach", "gone@test.ng", "", []user.Role{user.RoleTeacher}, false)

	tests := []httpTest{
		// anonymous visitors
		{
			name: "anonymous can browse the forum", path: "/v1/content/forum",
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "forum discussions"}),
		},
		{
			name: "anonymous is asked to sign in for quizzes", path: "/v1/content/quizzes",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, signInResp()),
		},
		// free tier
		{
			name: "free subscriber can browse the forum", path: "/v1/content/forum", token: getToken(t, freeStudent),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "forum discussions"}),
		},
		{
			name: "free subscriber is asked to upgrade for quizzes", path: "/v1/content/quizzes", token: getToken(t, freeStudent),
			wantCode: http.StatusPaymentRequired, wantData: marchallObj(t, upgradeResp()),
		},
		{
			name: "free subscriber is asked to upgrade for flashcards", path: "/v1/content/flashcards", token: getToken(t, freeStudent),
			wantCode: http.StatusPaymentRequired, wantData: marchallObj(t, upgradeResp()),
		},
		// premium tier
		{
			name: "premium subscriber can take quizzes", path: "/v1/content/quizzes", token: getToken(t, premiumStudent),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "practice quizzes"}),
		},
		{
			name: "a single premium subscription opens every premium feature", path: "/v1/content/solution-bank", token: getToken(t, premiumStudent),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "step-by-step solutions"}),
		},
		{
			name: "expired premium is asked to upgrade", path: "/v1/content/quizzes", token: getToken(t, lapsedStudent),
			wantCode: http.StatusPaymentRequired, wantData: marchallObj(t, upgradeResp()),
		},
		// role bypass
		{
			name: "teacher bypasses premium check even with an expired subscription", path: "/v1/content/quizzes", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "practice quizzes"}),
		},
		{
			name: "admin bypasses premium check with no subscription at all", path: "/v1/content/dashboard", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"content": "student dashboard"}),
		},
		{
			name: "deactivated teacher loses the bypass", path: "/v1/content/quizzes", token: getToken(t, inactiveTeacher),
			wantCode: http.StatusPaymentRequired, wantData: marchallObj(t, upgradeResp()),
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

func Test_contentApi_checkAccess(t *testing.T) {
	app := setup(t)

	math := testutil.CreateSubject(t, subjRepo, "MATH", "Mathematics")
	now := time.Now().UTC()
	future := now.Add(30 * 24 * time.Hour)

	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.ng", "", []user.Role{user.RoleStudent}, true)
	premium := testutil.CreateUser(t, usrRepo, "Premium", "premium", "premium@test.ng", "", []user.Role{user.RoleStudent}, true)
	testutil.CreateSubscription(t, subRepo, premium.ID, math.ID,
		subscription.TierPremium, subscription.StatusActive, now, &future)

	tests := []httpTest{
		{
			name: "premium subscriber is allowed", path: "/v1/content/access/quizzes", token: getToken(t, premium),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entitlement.Decision{Outcome: entitlement.OutcomeAllowed, Reason: "active premium subscription"}),
		},
		{
			name: "free account is denied", path: "/v1/content/access/quizzes", token: getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entitlement.Decision{Outcome: entitlement.OutcomeDenied, Reason: "premium subscription required"}),
		},
		{
			name: "anonymous free feature is allowed", path: "/v1/content/access/forum",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entitlement.Decision{Outcome: entitlement.OutcomeAllowed, Reason: "free feature"}),
		},
		{
			name: "unknown feature name never fails open", path: "/v1/content/access/pdf-export", token: getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, entitlement.Decision{Outcome: entitlement.OutcomeDenied, Reason: "premium subscription required"}),
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
