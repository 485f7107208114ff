package controllers

import (
	"testing"

	"secondhand-market/models"
	"secondhand-market/utils"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	admin := &utils.Claims{Role: models.RoleAdmin}
	buyer := &utils.Claims{Role: models.RoleBuyer}
	seller := &utils.Claims{Role: models.RoleSeller}

	// anonymous browsing always sees approved listings
	assert.Equal(t, models.ProductApproved, effectiveStatus(nil, ""))
	assert.Equal(t, models.ProductApproved, effectiveStatus(nil, models.ProductPending))

	// non-admin roles cannot peek at unapproved listings either
	assert.Equal(t, models.ProductApproved, effectiveStatus(buyer, models.ProductRejected))
	assert.Equal(t, models.ProductApproved, effectiveStatus(seller, models.ProductPending))

	// admins may filter on any status, approved stays the default
	assert.Equal(t, models.ProductPending, effectiveStatus(admin, models.ProductPending))
	assert.Equal(t, models.ProductRejected, effectiveStatus(admin, models.ProductRejected))
	assert.Equal(t, models.ProductApproved, effectiveStatus(admin, ""))
}
