package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "user-admin", TTL: time.Hour}

	tok, err := j.Issue("developer", []string{"developer", "admin"})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "developer", c.UID)
	assert.Equal(t, "developer", c.Role)
	assert.True(t, c.HasRole("admin"))
	assert.False(t, c.HasRole("guest"))
}

func TestParseRejectsForeignIssuerAndSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "user-admin", TTL: time.Hour}
	tok, err := j.Issue("admin", []string{"admin"})
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("s3cret"), Issuer: "someone-else", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)

	wrongKey := &JWTer{Secret: []byte("nope"), Issuer: "user-admin", TTL: time.Hour}
	_, err = wrongKey.Parse(tok)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "user-admin", TTL: -2 * time.Hour}
	tok, err := j.Issue("admin", []string{"admin"})
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}
