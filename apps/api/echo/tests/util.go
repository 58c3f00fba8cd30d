package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/madrasah/darsplan/apps/api/echo"
	"github.com/madrasah/darsplan/core/lesson"
	"github.com/madrasah/darsplan/core/session"
	"github.com/madrasah/darsplan/core/user"
	inmemdb "github.com/madrasah/darsplan/storage/database/inmem"
)

// shared server state, wired by TestMain
var (
	db       *inmemdb.DB
	app      Server
	usrSvc   *user.Service
	usrRepo  user.Repository
	lsnRepo  lesson.Repository
	sessions *session.Store
	changes  *lesson.ChangeBroker
	google   *googleVerifierStub

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

var errInvalidGoogleToken = errors.New("invalid ID token")

// googleVerifierStub stands in for the Google token verification endpoint.
type googleVerifierStub struct {
	idents map[string]user.Identity
}

func (g *googleVerifierStub) VerifyIDToken(_ context.Context, token string) (user.Identity, error) {
	if ident, ok := g.idents[token]; ok {
		return ident, nil
	}
	return user.Identity{}, errInvalidGoogleToken
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
	extra    interface{}
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

// getToken signs in usr, recording a live session so the token passes the
// session middleware.
func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, _, err := IssueSession(usr, sessions)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		// list endpoints serve empty listings as [], never null
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	if l1, ok := j1.([]interface{}); ok {
		if l2, ok := j2.([]interface{}); ok {
			return assert.ElementsMatch(t, l1, l2), nil
		}
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
