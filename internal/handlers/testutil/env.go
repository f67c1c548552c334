package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/api"
	sharedtestutil "github.com/perchard/trustbind/internal/database/testutil"
	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/internal/signing"
	"github.com/perchard/trustbind/pkg/mail"
)

// SigningKeyConfig is the deterministic all-zero-seed key every handler test
// signs with, so signature assertions can use precomputed values.
const SigningKeyConfig = "ed25519 0 AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// ServerName is the server name the test instance signs as.
const ServerName = "localhost"

// Env encapsulates a fully-wired API instance backed by an in-memory
// database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Invites  *services.InviteTokenService
	Sessions *services.ValidationSessionService
	Key      *signing.Key
	Mailer   *CaptureMailer

	// AccessToken authenticates as the seeded account.
	AccessToken string
	UserID      string
}

// CaptureMailer records outgoing messages instead of dialling SMTP.
type CaptureMailer struct {
	Sent []mail.Message
	Err  error
}

// Send implements mail.Mailer.
func (m *CaptureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// NewEnv provisions a fresh handler test environment with migrations and a
// seeded authenticated account.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t)

	key, err := signing.ParseKey(SigningKeyConfig)
	require.NoError(t, err)

	invites, err := services.NewInviteTokenService(db)
	require.NoError(t, err)

	accounts, err := services.NewAccountService(db)
	require.NoError(t, err)

	sessions, err := services.NewValidationSessionService(db)
	require.NoError(t, err)

	binder, err := services.NewBindService(invites, key, ServerName)
	require.NoError(t, err)

	mailer := &CaptureMailer{}
	templates := mail.NewTemplateStore("")
	require.NoError(t, templates.Register(services.InviteTemplateID, services.DefaultInviteTemplate))

	notifier, err := services.NewInviteNotifier(mailer, templates, "noreply@"+ServerName)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Deps{
		DB:         db,
		Invites:    invites,
		Accounts:   accounts,
		Sessions:   sessions,
		Binder:     binder,
		Notifier:   notifier,
		Key:        key,
		ServerName: ServerName,
	})
	require.NoError(t, err)

	userID := "@alice:wonderland-" + uuid.NewString()
	accessToken := "tok-" + uuid.NewString()
	require.NoError(t, db.Create(&models.Account{UserID: userID, CreatedTs: time.Now().UnixMilli()}).Error)
	require.NoError(t, db.Create(&models.AuthToken{Token: accessToken, UserID: userID}).Error)

	return &Env{
		T:           t,
		DB:          db,
		Router:      router,
		Invites:     invites,
		Sessions:    sessions,
		Key:         key,
		Mailer:      mailer,
		AccessToken: accessToken,
		UserID:      userID,
	}
}

// Request executes an HTTP request against the test router, applying JSON
// encoding and the bearer token automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// RawRequest sends a request with an already-encoded body, for malformed
// payload tests.
func (e *Env) RawRequest(method, path, body, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// ErrorBody mirrors the Matrix error payload.
type ErrorBody struct {
	ErrCode string `json:"errcode"`
	Error   string `json:"error"`
}

// DecodeError parses a Matrix error payload from a recorder.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// DecodeInto unmarshals the response body into dest.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}
