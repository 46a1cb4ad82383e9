package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("op-17", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetOperatorIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "op-17", got)
}

func TestGenerateToken_EmptyOperator(t *testing.T) {
	t.Parallel()

	_, err := GenerateToken("", []byte("k"), time.Hour)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetOperatorIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("op-1", secret, -1*time.Minute)
	require.NoError(t, err)

	_, err = GetOperatorIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestGetOperatorIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("op-2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetOperatorIDFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetOperatorIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{OperatorID: "op-3"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = GetOperatorIDFromToken(tok, []byte("k"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetOperatorIDFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := GetOperatorIDFromToken("not.a.jwt", []byte("k"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
