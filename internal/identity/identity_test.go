package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_RoundTrip(t *testing.T) {
	p := NewProvider("secret", "resort")
	token, err := p.Issue(Identity{UID: "u1", FullName: "Aino Guest", IsAdmin: true}, time.Hour)
	require.NoError(t, err)

	id, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "u1", FullName: "Aino Guest", IsAdmin: true}, id)
}

func TestProvider_Rejects(t *testing.T) {
	p := NewProvider("secret", "resort")
	valid, err := p.Issue(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)

	expired, err := p.Issue(Identity{UID: "u1"}, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewProvider("another-secret", "resort").Issue(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewProvider("secret", "elsewhere").Issue(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "resort"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "wrong issuer", token: otherIssuer},
		{name: "no subject", token: noSubject},
		{name: "tampered", token: valid + "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Verify(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestProvider_IssueRequiresUID(t *testing.T) {
	_, err := NewProvider("secret", "").Issue(Identity{}, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
