package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		Validation("missing"):                     http.StatusBadRequest,
		Conflict("dup"):                           http.StatusBadRequest,
		Unauthorized("no"):                        http.StatusUnauthorized,
		NotFound("gone"):                          http.StatusNotFound,
		ServiceUnavailable("down", errors.New("x")): http.StatusServiceUnavailable,
		New(KindUpstream, "garbled"):              http.StatusBadGateway,
		Internal("boom", nil):                     http.StatusInternalServerError,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.HTTPStatus(), e.Message)
	}
}

func TestGetKindThroughWrapping(t *testing.T) {
	base := NotFound("Shop not found")
	wrapped := fmt.Errorf("update item: %w", base)

	assert.Equal(t, KindNotFound, GetKind(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindInternal, GetKind(errors.New("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := ServiceUnavailable("Auth service unavailable", cause)

	assert.Equal(t, "Auth service unavailable: dial tcp: refused", e.Error())
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "Shop not found", NotFound("Shop not found").Error())
}
