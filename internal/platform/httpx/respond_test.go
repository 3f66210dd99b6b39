package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONEnforcesBodyLimit(t *testing.T) {
	var target map[string]string

	ok := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`))
	require.NoError(t, DecodeJSON(ok, &target))
	assert.Equal(t, "b", target["a"])

	big := `{"a":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &target)
	require.Error(t, err)
	assert.True(t, IsTooLarge(err))
}

func TestLimitBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", MaxBodyBytes+1)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	LimitBody(rr, req)
	err := req.ParseForm()
	assert.True(t, IsTooLarge(err), "got %v", err)
	assert.False(t, IsTooLarge(fmt.Errorf("other")))
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("profile 9: %w", ErrNotFound): http.StatusNotFound,
		fmt.Errorf("bad: %w", ErrValidation):     http.StatusBadRequest,
		ErrForbidden:                             http.StatusForbidden,
		ErrUnauthorized:                          http.StatusUnauthorized,
		fmt.Errorf("boom"):                       http.StatusInternalServerError,
	}
	for err, status := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, err)
		assert.Equal(t, status, rr.Code, err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	}
}
