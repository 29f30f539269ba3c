package jwttoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railguard/internal/jwttoken"
	"railguard/internal/platform/middleware"
	dErrors "railguard/pkg/domain-errors"
)

const testAccount = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

func TestGenerateAndValidate(t *testing.T) {
	service := jwttoken.NewService("test-signing-key", "railguard-test")

	token, err := service.GenerateToken(testAccount, middleware.RoleOwner, time.Hour)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testAccount, claims.Account)
	assert.Equal(t, middleware.RoleOwner, claims.Role)
}

func TestValidateExpiredToken(t *testing.T) {
	service := jwttoken.NewService("test-signing-key", "railguard-test")

	token, err := service.GenerateToken(testAccount, middleware.RoleAgent, -time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	token, err := jwttoken.NewService("key-one", "railguard-test").
		GenerateToken(testAccount, middleware.RoleOwner, time.Hour)
	require.NoError(t, err)

	_, err = jwttoken.NewService("key-two", "railguard-test").ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	_, err := jwttoken.NewService("key", "railguard-test").ValidateToken("not.a.token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
