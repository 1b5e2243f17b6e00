package captcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hsnnder/real-estatemvp/internal/captcha"
	"github.com/Hsnnder/real-estatemvp/internal/config"
)

func TestVerify_Disabled(t *testing.T) {
	v := captcha.NewTurnstileVerifier(&config.Config{})
	assert.False(t, v.Enabled())
	ok, err := v.Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_SiteVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "1.2.3.4", r.PostForm.Get("remoteip"))
		if r.PostForm.Get("response") == "good" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := captcha.NewTurnstileVerifier(&config.Config{CloudflareTurnstileSecretKey: "secret", CloudflareSiteVerifyURL: srv.URL})
	assert.True(t, v.Enabled())

	ok, err := v.Verify(context.Background(), "good", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), "bad", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify(context.Background(), "", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := captcha.NewTurnstileVerifier(&config.Config{CloudflareTurnstileSecretKey: "secret", CloudflareSiteVerifyURL: srv.URL})
	ok, err := v.Verify(context.Background(), "tok", "")
	assert.ErrorIs(t, err, captcha.ErrSiteVerifyUnavailable)
	assert.False(t, ok)
}
