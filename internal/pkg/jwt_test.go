package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)

	token, err := issuer.Generate(42)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "access", claims.Subject)
}

func TestTokenIssuerRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	token, err := issuer.Generate(7)
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Minute).Parse(token)
	assert.Error(t, err)

	expired := NewTokenIssuer("secret", -time.Minute)
	old, err := expired.Generate(7)
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = issuer.Parse("not-a-token")
	assert.Error(t, err)
}
