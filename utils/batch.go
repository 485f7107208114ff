package utils

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxInQuerySize is the largest id list the backend accepts in a single
// "$in" query, so longer lists have to be issued in windows.
const MaxInQuerySize = 10

// ChunkIDs partitions ids into windows of at most size elements, preserving
// order. A nil or empty input yields no windows.
func ChunkIDs(ids []primitive.ObjectID, size int) [][]primitive.ObjectID {
	if size <= 0 || len(ids) == 0 {
		return nil
	}

	var chunks [][]primitive.ObjectID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
