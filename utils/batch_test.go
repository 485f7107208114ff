package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeIDs(n int) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, n)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	return ids
}

func TestChunkIDsWindowCounts(t *testing.T) {
	cases := []struct {
		total  int
		chunks int
	}{
		{0, 0},
		{9, 1},
		{10, 1},
		{11, 2},
		{25, 3},
	}

	for _, tc := range cases {
		chunks := ChunkIDs(makeIDs(tc.total), MaxInQuerySize)
		assert.Len(t, chunks, tc.chunks, "total=%d", tc.total)
	}
}

func TestChunkIDsPreservesAllElements(t *testing.T) {
	ids := makeIDs(25)
	chunks := ChunkIDs(ids, MaxInQuerySize)

	var flattened []primitive.ObjectID
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), MaxInQuerySize)
		flattened = append(flattened, chunk...)
	}

	assert.Equal(t, ids, flattened)
}

func TestChunkIDsBoundarySizes(t *testing.T) {
	chunks := ChunkIDs(makeIDs(11), MaxInQuerySize)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 1)
}

func TestChunkIDsInvalidSize(t *testing.T) {
	assert.Nil(t, ChunkIDs(makeIDs(5), 0))
	assert.Nil(t, ChunkIDs(makeIDs(5), -1))
}
