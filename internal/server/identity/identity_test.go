package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, p, err := iss.Issue("  Ann ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)
	assert.NotEmpty(t, p.ID)

	got, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Ann", got.Name)
}

func TestIssuer_Rejects(t *testing.T) {
	t.Parallel()

	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := iss.Issue("Ann")
	require.NoError(t, err)

	other, err := NewIssuer("other", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Config(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer("secret", 0)
	assert.Error(t, err)

	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	_, _, err = iss.Issue(" ")
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", FromHeader("Bearer abc"))
	assert.Empty(t, FromHeader("Basic abc"))
	assert.Empty(t, FromHeader(""))
}
