package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secondhand-market/middleware"
	"secondhand-market/models"
	"secondhand-market/utils"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClampQuantity(t *testing.T) {
	cases := []struct {
		quantity int
		max      int
		want     int
	}{
		{0, 5, 1},
		{-3, 5, 1},
		{1, 5, 1},
		{3, 5, 3},
		{5, 5, 5},
		{9, 5, 5},
		{7, 0, 7}, // unknown max leaves the upper bound open
	}

	for _, tc := range cases {
		got := clampQuantity(tc.quantity, tc.max)
		assert.Equal(t, tc.want, got, "quantity=%d max=%d", tc.quantity, tc.max)
	}
}

func TestAddToCartRejectsBadProductID(t *testing.T) {
	cc := &CartController{}

	req := httptest.NewRequest("POST", "/cart", strings.NewReader(`{"product_id":"not-hex","quantity":1}`))
	claims := &utils.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   models.RoleBuyer,
	}
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))

	rec := httptest.NewRecorder()
	cc.AddToCart(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid product ID")
}

func TestAddToCartRequiresAuth(t *testing.T) {
	cc := &CartController{}

	req := httptest.NewRequest("POST", "/cart", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	cc.AddToCart(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
