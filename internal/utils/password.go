package utils

import (
    "sync"

    "golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of plain using the given cost.
// The plain password is never logged or returned in errors.
func HashPassword(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
    dummyOnce sync.Once
    dummyHash []byte
)

// BurnPasswordCheck performs a bcrypt comparison against a throwaway hash.
// Sign-in calls it when the email is unknown so that both failure paths
// take roughly the same time.
func BurnPasswordCheck(plain string) {
    dummyOnce.Do(func() {
        dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-password"), bcrypt.DefaultCost)
    })
    _ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
