package client

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteError_KindByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusBadRequest, nil},
		{http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		err := newRemoteError(tt.status, "msg")
		if tt.want == nil {
			assert.False(t, errors.Is(err, ErrUnauthorized), "status %d", tt.status)
			assert.False(t, errors.Is(err, ErrUnavailable), "status %d", tt.status)
			continue
		}
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestRemoteError_Message(t *testing.T) {
	assert.Equal(t, "remote error: status 400: Senha antiga não confere.", newRemoteError(400, "Senha antiga não confere.").Error())
	assert.Equal(t, "remote error: status 500", newRemoteError(500, "").Error())
	assert.True(t, IsRemoteRejection(newRemoteError(400, "x")))
	assert.False(t, IsRemoteRejection(ErrUnavailable))
}
