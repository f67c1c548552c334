package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/perchard/trustbind/internal/database/testutil"
	"github.com/perchard/trustbind/internal/models"
	"github.com/perchard/trustbind/internal/services"
)

func newAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	userID := "@alice:" + uuid.NewString()
	token := "tok-" + uuid.NewString()
	require.NoError(t, db.Create(&models.Account{UserID: userID, CreatedTs: time.Now().UnixMilli()}).Error)
	require.NoError(t, db.Create(&models.AuthToken{Token: token, UserID: userID}).Error)

	accounts, err := services.NewAccountService(db)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", Auth(accounts), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})

	return r, token
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	r, token := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Body.String())
}

func TestAuthAcceptsAccessTokenQuery(t *testing.T) {
	r, token := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?access_token="+token, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "M_UNAUTHORIZED")
}

func TestAuthRejectsUnknownToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok-"+uuid.NewString())
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}
