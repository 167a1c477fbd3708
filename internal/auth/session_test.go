package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s, err := NewSigner(time.Hour)
	require.NoError(t, err)

	player := uuid.New()
	token, err := s.CreateToken(player)
	require.NoError(t, err)

	got, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, player, got)
}

func TestTokenFromOtherSignerRejected(t *testing.T) {
	a, err := NewSigner(0)
	require.NoError(t, err)
	b, err := NewSigner(0)
	require.NoError(t, err)

	token, err := a.CreateToken(uuid.New())
	require.NoError(t, err)

	_, err = b.Authenticate(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	s, err := NewSigner(-time.Minute)
	require.NoError(t, err)

	token, err := s.CreateToken(uuid.New())
	require.NoError(t, err)

	_, err = s.Authenticate(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	s, err := NewSigner(0)
	require.NoError(t, err)
	_, err = s.Authenticate("not-a-token")
	assert.Error(t, err)
}
