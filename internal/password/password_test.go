package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLayout(t *testing.T) {
	hash, err := Derive("Secr3t_pass")
	require.NoError(t, err)
	assert.Len(t, hash, KeySize+DefaultSaltSize)

	again, err := Derive("Secr3t_pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts must differ between derivations")
}

func TestVerifyRoundTrip(t *testing.T) {
	// Low iteration counts keep the test fast; the layout is the same.
	passwords := []string{"dkpkg123", "Пароль#1", "a", "with space_9A"}
	for _, p := range passwords {
		hash, err := DeriveWith(p, DefaultSaltSize, 1000)
		require.NoError(t, err)
		assert.NoError(t, VerifyWith(hash, p, 1000), p)
		assert.ErrorIs(t, VerifyWith(hash, p+"x", 1000), ErrVerificationFailed, p)
	}
}

func TestVerifyDefaultIterations(t *testing.T) {
	hash, err := Derive("Abcdef1$")
	require.NoError(t, err)
	assert.NoError(t, Verify(hash, "Abcdef1$"))
	assert.ErrorIs(t, Verify(hash, "abcdef1$"), ErrVerificationFailed)
}

func TestVerifyMalformed(t *testing.T) {
	cases := map[string][]byte{
		"nil":      nil,
		"empty":    {},
		"short":    make([]byte, 10),
		"key only": make([]byte, KeySize),
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Verify(blob, "anything"), ErrVerificationFailed)
		})
	}
}

func TestInvalidInput(t *testing.T) {
	_, err := DeriveWith("", DefaultSaltSize, DefaultIterations)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DeriveWith("x", 0, DefaultIterations)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DeriveWith("x", DefaultSaltSize, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, VerifyWith(make([]byte, 80), "x", 0), ErrInvalidInput)
}
