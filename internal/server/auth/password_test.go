package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

func TestArgon2id_HashVerify(t *testing.T) {
	a := fastArgon()

	for _, pw := range []string{"correct-pw", "p", "пароль", strings.Repeat("x", 512)} {
		h, err := a.Hash(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=64,t=1,p=1$"), h)
		assert.True(t, a.Verify(pw, h), "own password must verify")
		assert.False(t, a.Verify(pw+"!", h), "different password must not verify")
	}
}

func TestArgon2id_SaltsDiffer(t *testing.T) {
	a := fastArgon()

	h1, err := a.Hash("same")
	require.NoError(t, err)
	h2, err := a.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, a.Verify("same", h1))
	assert.True(t, a.Verify("same", h2))
}

func TestArgon2id_EmptyPassword(t *testing.T) {
	_, err := fastArgon().Hash("")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestArgon2id_VerifyUsesStoredParams(t *testing.T) {
	h, err := NewArgon2id(128, 2, 2).Hash("pw")
	require.NoError(t, err)

	assert.True(t, fastArgon().Verify("pw", h))
}

func TestArgon2id_MalformedNeverMatches(t *testing.T) {
	a := fastArgon()
	good, err := a.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not-a-hash",
		"bcrypt":          "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		"wrong version":   strings.Replace(good, "v=19", "v=16", 1),
		"zero threads":    strings.Replace(good, "p=1", "p=0", 1),
		"huge memory":     strings.Replace(good, "m=64", "m=4000000000", 1),
		"bad salt b64":    strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"short key":       strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], "AAAA"}, "$"),
		"missing segment": strings.Join(parts[:5], "$"),
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, a.Verify("pw", stored))
			})
		})
	}
}

func TestArgon2id_DummyHash(t *testing.T) {
	a := fastArgon()

	d := a.DummyHash()
	assert.Equal(t, d, a.DummyHash(), "dummy hash is computed once")

	_, _, _, err := decodeHash(d)
	require.NoError(t, err)
	assert.False(t, a.Verify("", d))
	assert.False(t, a.Verify("whatever", d))
}
