package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

func TestParseSort(t *testing.T) {
	fallback := bson.D{{Key: "createdAt", Value: -1}}

	tests := []struct {
		in   string
		want bson.D
	}{
		{"", fallback},
		{"totalAmount", bson.D{{Key: "totalAmount", Value: 1}}},
		{"-totalAmount", bson.D{{Key: "totalAmount", Value: -1}}},
		{" orderNumber ", bson.D{{Key: "orderNumber", Value: 1}}},
		{"-shippingAddress.city", bson.D{{Key: "shippingAddress.city", Value: -1}}},
	}

	for _, tc := range tests {
		got, err := ParseSort(tc.in, fallback)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseSort_RejectsOperators(t *testing.T) {
	for _, in := range []string{"$where", "-", "--createdAt", "name;drop"} {
		_, err := ParseSort(in, nil)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve, in)
	}
}

func TestBuildOrderFilter(t *testing.T) {
	customer := primitive.NewObjectID()
	product := primitive.NewObjectID()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	filter := BuildOrderFilter(models.OrderFilter{
		Status:     models.OrderStatusShipped,
		CustomerID: &customer,
		ProductID:  &product,
		StartDate:  &start,
		EndDate:    &end,
	})

	assert.Equal(t, models.OrderStatusShipped, filter["status"])
	assert.Equal(t, customer, filter["customerId"])
	assert.Equal(t, product, filter["items.product"])
	assert.Equal(t, bson.M{"$gte": start, "$lte": end}, filter["createdAt"])
}

func TestBuildOrderFilter_SingleDateBound(t *testing.T) {
	start := time.Now()
	filter := BuildOrderFilter(models.OrderFilter{StartDate: &start})

	assert.Equal(t, bson.M{"$gte": start}, filter["createdAt"])
	assert.NotContains(t, filter, "status")
}

func TestBuildOrderFilter_SearchMatchesNothing(t *testing.T) {
	filter := BuildOrderFilter(models.OrderFilter{ProductIn: []primitive.ObjectID{}})
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{}}, filter["items.product"])

	empty := BuildOrderFilter(models.OrderFilter{})
	assert.Empty(t, empty)
}

func TestBuildCustomerFilter(t *testing.T) {
	filter := BuildCustomerFilter(models.CustomerFilter{Query: "a.b", Status: "blocked"})

	and, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 3)
	assert.Equal(t, bson.M{"role": models.RoleCustomer}, and[0])
	assert.Equal(t, bson.M{"isBlocked": true}, and[2])

	or := and[1]["$or"].([]bson.M)
	assert.Equal(t, bson.M{"$regex": `a\.b`, "$options": "i"}, or[2]["email"])
}
