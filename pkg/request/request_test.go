package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"T"}`))
	var body struct {
		Title string `json:"title"`
	}
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &body))
	assert.Equal(t, "T", body.Title)
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	payload := `{"content":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(payload))
	var body struct {
		Content string `json:"content"`
	}
	err := DecodeJSON(httptest.NewRecorder(), req, &body)
	require.Error(t, err)
	assert.True(t, TooLarge(err))
}

func TestTooLargeOtherErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var body map[string]string
	err := DecodeJSON(httptest.NewRecorder(), req, &body)
	require.Error(t, err)
	assert.False(t, TooLarge(err))
}
