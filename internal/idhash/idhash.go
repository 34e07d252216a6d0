// Package idhash derives deterministic record identifiers so repeated
// ingestion of the same export is idempotent.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRecordID computes a deterministic record_id using SHA256 over the
// transaction's natural key.
// Formula: SHA256(orderDate|entity|category|quantity|unitPrice|profit|row)
// Returns hex-encoded hash (64 characters).
func ComputeRecordID(
	orderDate int64,
	entity string,
	category string,
	quantity float64,
	unitPrice float64,
	profit float64,
	row int,
) string {
	data := fmt.Sprintf("%d|%s|%s|%g|%g|%g|%d",
		orderDate,
		entity,
		category,
		quantity,
		unitPrice,
		profit,
		row,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
