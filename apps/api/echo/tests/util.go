package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/PeaceIshola/eduhub/apps/api/echo"
	"github.com/PeaceIshola/eduhub/core/entitlement"
	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
	cachesvc "github.com/PeaceIshola/eduhub/services/cache"
	emailsvc "github.com/PeaceIshola/eduhub/services/email"
	logsvc "github.com/PeaceIshola/eduhub/services/logger"
	inmemdb "github.com/PeaceIshola/eduhub/storage/database/inmem"
)

var (
	usrRepo  user.Repository
	subjRepo subject.Repository
	subRepo  subscription.Repository

	usrSvc    *user.Service
	subSvc    *subscription.Service
	snapCache *cachesvc.MemorySnapshotCache

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	subjRepo = inmemdb.NewSubjectRepository(db)
	subRepo = inmemdb.NewSubscriptionRepository(db)

	// set up services
	logger := logsvc.NewDiscardLogger()
	mailSvc := emailsvc.NewConsoleServiceMock()
	snapCache = cachesvc.NewMemorySnapshotCache(time.Minute)

	usrSvc = user.NewService(usrRepo, mailSvc, logger)
	subjSvc := subject.NewService(subjRepo)
	subSvc = subscription.NewService(subRepo, mailSvc, logger, snapCache, nil)
	resolver := entitlement.NewResolver(usrSvc, subSvc, entitlement.DefaultPolicy(), snapCache, logger)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			SubjSvc:        subjSvc,
			SubSvc:         subSvc,
			Resolver:       resolver,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
