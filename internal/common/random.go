package common

import (
	"crypto/rand"
	"math/big"
)

// passwordChars deliberately omits lookalike characters (i, l, o, I, L, O,
// 0, 1) so generated passwords survive being read out loud or retyped.
const passwordChars = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// PasswordLength is the length of generated account passwords.
const PasswordLength = 10

// GeneratePassword returns a random password of PasswordLength characters
// drawn from passwordChars.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordChars)))
	b := make([]byte, PasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordChars[n.Int64()]
	}
	return string(b), nil
}
