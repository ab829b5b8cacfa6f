package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, 32)

	hashed, err := HashPassword("secret123", salt)
	require.NoError(t, err)

	require.True(t, CheckPassword(hashed, "secret123", salt))
	require.False(t, CheckPassword(hashed, "wrong", salt))

	otherSalt, err := NewSalt()
	require.NoError(t, err)
	require.False(t, CheckPassword(hashed, "secret123", otherSalt))
}

func TestSaltsAreUnique(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
