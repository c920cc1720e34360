package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := MintServiceToken(secret, "audit-worker", time.Minute)
	require.NoError(t, err)

	subject, err := ValidateServiceToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "audit-worker", subject)
}

func TestServiceTokenWrongSecret(t *testing.T) {
	token, err := MintServiceToken([]byte("secret-a"), "audit-worker", time.Minute)
	require.NoError(t, err)

	_, err = ValidateServiceToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestServiceTokenExpired(t *testing.T) {
	token, err := MintServiceToken([]byte("secret"), "audit-worker", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateServiceToken([]byte("secret"), token)
	assert.Error(t, err)
}
