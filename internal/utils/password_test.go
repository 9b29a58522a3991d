package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
    hash, err := HashPassword("s3cret!", bcrypt.MinCost)
    require.NoError(t, err)

    assert.NotEqual(t, "s3cret!", hash)
    assert.True(t, VerifyPassword(hash, "s3cret!"))
    assert.False(t, VerifyPassword(hash, "wrong"))

    again, err := HashPassword("s3cret!", bcrypt.MinCost)
    require.NoError(t, err)
    assert.NotEqual(t, hash, again, "hashes must be salted")
}

func TestBurnPasswordCheck(t *testing.T) {
    assert.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
