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
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func checkoutRequest(role, body string) *http.Request {
	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(body))
	claims := &utils.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Email:  "user@example.com",
		Role:   role,
	}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	return req.WithContext(ctx)
}

// Precondition failures must be rejected before any database access, so
// these run against a controller with no collections wired.
func TestCheckoutRejectsSellers(t *testing.T) {
	oc := &OrderController{}

	rec := httptest.NewRecorder()
	oc.Checkout(rec, checkoutRequest(models.RoleSeller,
		`{"payment_method":"KBZPay","idempotency_key":"abcdef1234"}`))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sellers are not allowed")
}

func TestCheckoutRejectsMissingPaymentMethod(t *testing.T) {
	oc := &OrderController{}

	rec := httptest.NewRecorder()
	oc.Checkout(rec, checkoutRequest(models.RoleBuyer,
		`{"idempotency_key":"abcdef1234"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment method is required")
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	oc := &OrderController{}

	rec := httptest.NewRecorder()
	oc.Checkout(rec, checkoutRequest(models.RoleBuyer,
		`{"payment_method":"PayPal","idempotency_key":"abcdef1234"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid payment method")
}

func TestCheckoutRejectsShortIdempotencyKey(t *testing.T) {
	oc := &OrderController{}

	rec := httptest.NewRecorder()
	oc.Checkout(rec, checkoutRequest(models.RoleBuyer,
		`{"payment_method":"WavePay","idempotency_key":"abc"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutRejectsUnauthenticated(t *testing.T) {
	oc := &OrderController{}

	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	oc.Checkout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidPaymentMethods(t *testing.T) {
	for _, m := range []string{
		models.PaymentKBZPay, models.PaymentWave, models.PaymentAYA,
		models.PaymentUAB, models.PaymentCOD,
	} {
		assert.True(t, models.ValidPaymentMethod(m), m)
	}
	assert.False(t, models.ValidPaymentMethod(""))
	assert.False(t, models.ValidPaymentMethod("Visa"))
	assert.False(t, models.ValidPaymentMethod("kbzpay")) // case-sensitive
}

func TestBuildOrderItemsFallsBackToUnknownSeller(t *testing.T) {
	knownSeller := primitive.NewObjectID()
	ghostSeller := primitive.NewObjectID()

	cartItems := []models.CartItem{
		{ProductID: primitive.NewObjectID(), Title: "Lamp", Price: 10, Quantity: 2, SellerID: knownSeller},
		{ProductID: primitive.NewObjectID(), Title: "Bike", Price: 5, Quantity: 1, SellerID: ghostSeller},
	}
	names := map[primitive.ObjectID]string{knownSeller: "Moe Moe"}

	items := buildOrderItems(cartItems, names)
	require.Len(t, items, 2)

	assert.Equal(t, "Moe Moe", items[0].SellerName)
	assert.Equal(t, 20.00, items[0].Subtotal)
	assert.Equal(t, "Unknown Seller", items[1].SellerName)
	assert.Equal(t, 5.00, items[1].Subtotal)
}

func TestDistinctSellerIDs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	items := []models.OrderItem{
		{SellerID: a}, {SellerID: b}, {SellerID: a},
	}

	ids := distinctSellerIDs(items)
	assert.Equal(t, []primitive.ObjectID{a, b}, ids)
}

func TestGroupItemsBySeller(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	items := []models.OrderItem{
		{Title: "Lamp", SellerID: a},
		{Title: "Bike", SellerID: b},
		{Title: "Chair", SellerID: a},
	}

	groups := groupItemsBySeller(items)
	require.Len(t, groups, 2)
	assert.Len(t, groups[a], 2)
	assert.Len(t, groups[b], 1)
	assert.Equal(t, "Bike", groups[b][0].Title)
}

// The mock server below queues exactly the reads Checkout should make
// before bailing out; any write attempt would fail on the exhausted mock
// and surface as a 500 instead of the expected status.
func TestCheckoutRejectsEmptyCartBeforeAnyWrite(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty cart", func(mt *mtest.T) {
		buyerID := primitive.NewObjectID()

		mt.AddMockResponses(
			// idempotency lookup finds nothing
			mtest.CreateCursorResponse(0, "marketplace.orders", mtest.FirstBatch),
			// buyer document
			mtest.CreateCursorResponse(0, "marketplace.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: buyerID},
				{Key: "name", Value: "Aye Chan"},
				{Key: "email", Value: "buyer@example.com"},
				{Key: "role", Value: models.RoleBuyer},
			}),
			// cart holds no line items
			mtest.CreateCursorResponse(0, "marketplace.cart_items", mtest.FirstBatch),
		)

		db := mt.Client.Database("marketplace")
		oc := &OrderController{
			Client:          mt.Client,
			OrderCollection: db.Collection("orders"),
			CartCollection:  db.Collection("cart_items"),
			UserCollection:  db.Collection("users"),
		}

		rec := httptest.NewRecorder()
		oc.Checkout(rec, checkoutRequest(models.RoleBuyer,
			`{"payment_method":"KBZPay","idempotency_key":"abcdef1234"}`))

		assert.Equal(mt, http.StatusBadRequest, rec.Code)
		assert.Contains(mt, rec.Body.String(), "Cart is empty")
	})
}

// A reused idempotency key must hand back the stored order untouched: no
// inserts, no cart wipe, no second confirmation email. The nil EmailService
// would panic if a replay tried to email again.
func TestCheckoutReturnsExistingOrderForReusedKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reused key", func(mt *mtest.T) {
		orderID := primitive.NewObjectID()
		buyerID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "marketplace.orders", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orderID},
				{Key: "buyer_id", Value: buyerID},
				{Key: "idempotency_key", Value: "abcdef1234"},
				{Key: "payment_method", Value: models.PaymentKBZPay},
				{Key: "status", Value: models.OrderConfirmed},
				{Key: "total", Value: 32.99},
			}),
		)

		oc := &OrderController{
			Client:          mt.Client,
			OrderCollection: mt.Client.Database("marketplace").Collection("orders"),
		}

		rec := httptest.NewRecorder()
		oc.Checkout(rec, checkoutRequest(models.RoleBuyer,
			`{"payment_method":"KBZPay","idempotency_key":"abcdef1234"}`))

		assert.Equal(mt, http.StatusOK, rec.Code)
		assert.Contains(mt, rec.Body.String(), orderID.Hex())
		assert.Contains(mt, rec.Body.String(), `"total":32.99`)
	})
}

func TestReceiptSellerID(t *testing.T) {
	single := primitive.NewObjectID()
	assert.Equal(t, single.Hex(), receiptSellerID([]primitive.ObjectID{single}))

	multi := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	assert.Equal(t, models.MultipleSellers, receiptSellerID(multi))
}
