package common

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportError_MessageAndUnwrap(t *testing.T) {
	err := NewTransportError("webdav", "get", 401, []byte("denied"), ErrUnauthorized)

	assert.Equal(t, "webdav get failed: HTTP 401 (denied): unauthorized", err.Error())
	require.ErrorIs(t, err, ErrUnauthorized)

	var te *TransportError
	require.True(t, errors.As(error(err), &te))
	assert.Equal(t, 401, te.StatusCode)
}

func TestTransportError_TruncatesBody(t *testing.T) {
	body := strings.Repeat("x", 1000)
	err := NewTransportError("webdav", "put", 500, []byte(body), nil)

	assert.Len(t, err.Body, bodyPrefixLen)
	assert.Nil(t, err.Unwrap())
}

func TestTransportError_TruncatesOnRuneBoundary(t *testing.T) {
	body := "x" + strings.Repeat("я", 150)
	err := NewTransportError("webdav", "get", 502, []byte(body), nil)

	assert.True(t, utf8.ValidString(err.Body))
	assert.Len(t, err.Body, bodyPrefixLen-1)
	assert.True(t, strings.HasPrefix(body, err.Body))
}

func TestTransportError_NoStatus(t *testing.T) {
	err := NewTransportError("s3", "put", 0, nil, errors.New("dial tcp: refused"))
	assert.Equal(t, "s3 put failed: dial tcp: refused", err.Error())
}
