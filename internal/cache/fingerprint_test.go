package cache

import (
	"testing"

	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func request(content string) domain.ComplianceRequest {
	return domain.ComplianceRequest{
		Content:     content,
		Language:    domain.LanguageEnglish,
		ContentType: domain.ContentTypeWhatsApp,
		AdvisorID:   "advisor-1",
	}
}

func TestFingerprint_WhitespaceStable(t *testing.T) {
	a := Fingerprint(request("Invest  in   mutual funds\n today"))
	b := Fingerprint(request("Invest in mutual funds today"))
	c := Fingerprint(request("  Invest in mutual funds today  "))

	assert.Equal(t, a, b, "internal whitespace runs should not change the fingerprint")
	assert.Equal(t, a, c, "leading and trailing whitespace should not change the fingerprint")
}

func TestFingerprint_ContentSensitive(t *testing.T) {
	a := Fingerprint(request("Invest in mutual funds today"))
	b := Fingerprint(request("Invest in mutual funds tomorrow"))

	assert.NotEqual(t, a, b)
}

func TestFingerprint_DimensionsSeparateKeys(t *testing.T) {
	base := request("Invest in mutual funds today")

	hindi := base
	hindi.Language = domain.LanguageHindi
	assert.NotEqual(t, Fingerprint(base), Fingerprint(hindi), "language is part of the key")

	email := base
	email.ContentType = domain.ContentTypeEmail
	assert.NotEqual(t, Fingerprint(base), Fingerprint(email), "content type is part of the key")
}

func TestFingerprint_AdvisorExcluded(t *testing.T) {
	a := request("Invest in mutual funds today")
	b := a
	b.AdvisorID = "advisor-2"

	assert.Equal(t, Fingerprint(a), Fingerprint(b), "identical content shares one evaluation across advisors")
}

func TestFingerprint_Format(t *testing.T) {
	fp := Fingerprint(request("Invest in mutual funds today"))
	assert.Len(t, fp, 64)
}
