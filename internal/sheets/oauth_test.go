package sheets

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"
)

func TestCallbackHandler(t *testing.T) {
	codes := make(chan string, 1)
	errs := make(chan error, 1)
	handler := callbackHandler(codes, errs)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, codes, 1)
	assert.Equal(t, "abc", <-codes)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, errs, 1)
	assert.Error(t, <-errs)
}

func TestOAuth2Config_ReadonlyScope(t *testing.T) {
	cfg := OAuth2Config{ClientID: "id", ClientSecret: "secret", CallbackAddr: "localhost:9999"}.oauthConfig()
	assert.Equal(t, []string{sheets.SpreadsheetsReadonlyScope}, cfg.Scopes)
	assert.Equal(t, "http://localhost:9999/callback", cfg.RedirectURL)
}
