package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"secondhand-market/middleware"
	"secondhand-market/models"
	"secondhand-market/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func markReadRequest(userID, notificationID primitive.ObjectID) *http.Request {
	req := httptest.NewRequest("PATCH", "/notifications/"+notificationID.Hex()+"/read", nil)
	claims := &utils.Claims{UserID: userID.Hex(), Role: models.RoleBuyer}
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
	return mux.SetURLVars(req, map[string]string{"id": notificationID.Hex()})
}

// MarkRead must target exactly one notification owned by the caller, so the
// update command it issues is inspected: the filter pins both _id and
// user_id, and the update stays single-document.
func TestMarkReadTargetsSingleOwnedNotification(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("single document update", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		notificationID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		nc := &NotificationController{
			Collection: mt.Client.Database("marketplace").Collection("notifications"),
		}

		rec := httptest.NewRecorder()
		nc.MarkRead(rec, markReadRequest(userID, notificationID))
		require.Equal(mt, http.StatusOK, rec.Code)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "update", evt.CommandName)

		update := evt.Command.Lookup("updates").Array().Index(0).Value().Document()

		filter := update.Lookup("q").Document()
		assert.Equal(mt, notificationID, filter.Lookup("_id").ObjectID())
		assert.Equal(mt, userID, filter.Lookup("user_id").ObjectID())

		// must never escalate to a multi-document update
		if multi, err := update.LookupErr("multi"); err == nil {
			assert.False(mt, multi.Boolean())
		}

		read, ok := update.Lookup("u").Document().Lookup("$set").Document().Lookup("read").BooleanOK()
		require.True(mt, ok)
		assert.True(mt, read)
	})
}

func TestMarkReadRejectsForeignNotification(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no match is a 404", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		nc := &NotificationController{
			Collection: mt.Client.Database("marketplace").Collection("notifications"),
		}

		rec := httptest.NewRecorder()
		nc.MarkRead(rec, markReadRequest(primitive.NewObjectID(), primitive.NewObjectID()))

		assert.Equal(mt, http.StatusNotFound, rec.Code)
		assert.Contains(mt, rec.Body.String(), "Notification not found")
	})
}
