package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"omitempty,oneof=buyer seller admin"`
}

func TestValidateStructAccepts(t *testing.T) {
	err := ValidateStruct(sampleRequest{
		Email:    "user@example.com",
		Password: "secret1",
		Role:     "seller",
	})
	assert.NoError(t, err)
}

func TestValidateStructRejectsBadEmail(t *testing.T) {
	err := ValidateStruct(sampleRequest{
		Email:    "not-an-email",
		Password: "secret1",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
}

func TestValidateStructRejectsShortPassword(t *testing.T) {
	err := ValidateStruct(sampleRequest{
		Email:    "user@example.com",
		Password: "abc",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Password")
}

func TestValidateStructRejectsUnknownRole(t *testing.T) {
	err := ValidateStruct(sampleRequest{
		Email:    "user@example.com",
		Password: "secret1",
		Role:     "superuser",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Role")
}
