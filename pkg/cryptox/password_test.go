package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap keeps argon2 fast in unit tests.
var cheap = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func TestHash(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "secret1"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Equal(t, "m=1024,t=1,p=1", parts[3])
			require.NotContains(t, hash, tt.password)

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHash_UniqueSaltsBothVerify(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)

	hash1, err := h.Hash("secret1")
	require.NoError(t, err)
	hash2, err := h.Hash("secret1")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("secret1", hash1))
	require.NoError(t, h.Verify("secret1", hash2))
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", strings.Repeat("x", 10000)} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch, "password %q", wrong)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	hash, err := NewHasherWithParams("pepper-a", cheap).Hash("secret1")
	require.NoError(t, err)

	require.ErrorIs(t, NewHasherWithParams("pepper-b", cheap).Verify("secret1", hash), ErrPasswordMismatch)
}

func TestVerify_DefaultParamsRoundTrip(t *testing.T) {
	h := NewHasher("pepper")
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	require.Contains(t, hash, "m=19456,t=2,p=1")
	require.NoError(t, h.Verify("secret1", hash))
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, h.Verify("secret1", string(legacy)))
	require.ErrorIs(t, h.Verify("secret2", string(legacy)), ErrPasswordMismatch)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$scrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify("test-password", tt.invalidHash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestEqualize(t *testing.T) {
	h := NewHasherWithParams("pepper", cheap)

	// Must not panic and must be callable repeatedly.
	h.Equalize("anything")
	h.Equalize("anything else")
	require.NotEmpty(t, h.dummy)
}
