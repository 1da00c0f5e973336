package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainBatch separates batch hashes from any other use of SHA-256 over
// canonical JSON. The version suffix allows a future algorithm change.
const DomainBatch = "hexwar/batch/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BatchHash computes the content address of a batch: game, count and the
// ordered element objects. Element order is part of the hash.
func BatchHash(game string, count int64, elements []IRObject) (string, error) {
	arr := make(IRArray, len(elements))
	for i, e := range elements {
		arr[i] = e
	}
	obj := IRObject{
		"game":     IRString(game),
		"count":    IRInt(count),
		"elements": arr,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("BatchHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBatch, canonical), nil
}
