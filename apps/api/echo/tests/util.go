package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/unicampus/backend/apps/api/echo"
	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
	"github.com/unicampus/backend/core/user"
	logsvc "github.com/unicampus/backend/services/logger"
	"github.com/unicampus/backend/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	echoapi.Server
	*testutil.Stack
	tokens *auth.JWTIssuer
}

func setup(t *testing.T) *app {
	t.Helper()
	s := testutil.NewStack()

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           s.Conf,
		Logger:         logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), s.Conf),
		Validate:       validate,
		Translator:     translator,
		Tokens:         s.Tokens,
		UserSvc:        s.Users,
		FaculdadeSvc:   s.Faculdades,
		CursoSvc:       s.Cursos,
		ColaboradorSvc: s.Colaboradores,
		EstudanteSvc:   s.Estudantes,
	})

	// the stack clock is frozen in the past; the JWT middleware checks expiry against the wall clock
	return &app{Server: srv, Stack: s, tokens: auth.NewJWTIssuer(s.Conf, core.SystemClock{})}
}

func (a *app) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := a.tokens.Issue(usr.Identity())
	require.NoError(t, err, "token()")
	return token
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

func (a *app) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "json.Unmarshal()")
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

// checkCodeAndData compares the status code and, when tt.wantData is set, the JSON body.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
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
