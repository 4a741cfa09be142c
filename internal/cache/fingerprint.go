// Package cache provides the fingerprint-keyed result cache layered
// over a TTL key-value store.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/jarvish/compliance-engine/pkg/normalize"
)

// Fingerprint computes the stable identity of one evaluation request:
// a SHA-256 over the whitespace-normalized content, the language and
// the content type. Incidental whitespace does not change the
// fingerprint; any semantic change to the content does.
//
// AdvisorID is not part of the key: identical content submitted by
// two advisors shares one evaluation.
func Fingerprint(req domain.ComplianceRequest) string {
	h := sha256.New()
	h.Write([]byte(normalize.Collapse(req.Content)))
	h.Write([]byte{0})
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.ContentType))
	return hex.EncodeToString(h.Sum(nil))
}
