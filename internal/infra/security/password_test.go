package security

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndCompare(t *testing.T) {
	svc := NewBcryptService(bcrypt.MinCost)

	hash, err := svc.Hash("lavender-fields-42")
	require.NoError(t, err)
	require.NotEqual(t, "lavender-fields-42", hash)

	require.NoError(t, svc.Compare(hash, "lavender-fields-42"))
	require.Error(t, svc.Compare(hash, "rose-fields-42"))
}

func TestBcryptCostClampedToDefault(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		svc := NewBcryptService(cost)
		require.Equal(t, bcrypt.DefaultCost, svc.cost, "cost %d", cost)
	}
}

func TestBcryptRejectsOverlongPassword(t *testing.T) {
	svc := NewBcryptService(bcrypt.MinCost)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.Hash(string(long))
	require.Error(t, err)
}
