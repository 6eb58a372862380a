package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, doPasswordsMatch(hash, "correct horse battery staple"))
	assert.False(t, doPasswordsMatch(hash, "wrong password"))
}

func TestGenerateVerificationCode_SixDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateVerificationCode()
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestGenerateHashToken_Unique(t *testing.T) {
	first, err := generateHashToken()
	assert.NoError(t, err)
	second, err := generateHashToken()
	assert.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
