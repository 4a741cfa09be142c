// Package rules provides unit tests for the rule engine.
package rules

import (
	"reflect"
	"testing"

	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

func TestRule_Match(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		content   string
		wantMatch bool
		wantRule  string
	}{
		{
			name:      "guaranteed returns",
			content:   "Invest with us for guaranteed returns every year",
			wantMatch: true,
			wantRule:  "AD-001",
		},
		{
			name:      "guaranteed returns with percentage",
			content:   "Get guaranteed 15% returns on this fund",
			wantMatch: true,
			wantRule:  "AD-001",
		},
		{
			name:      "assured profits",
			content:   "This scheme gives assured profits to every investor",
			wantMatch: true,
			wantRule:  "AD-001",
		},
		{
			name:      "risk-free investment",
			content:   "A completely risk-free investment opportunity",
			wantMatch: true,
			wantRule:  "AD-001",
		},
		{
			name:      "double your money",
			content:   "Double your money in just 6 months",
			wantMatch: true,
			wantRule:  "AD-002",
		},
		{
			name:      "insider information",
			content:   "I have insider information about this stock",
			wantMatch: true,
			wantRule:  "AD-003",
		},
		{
			name:      "hindi guaranteed returns",
			content:   "गारंटीड रिटर्न पाने के लिए आज ही निवेश करें",
			wantMatch: true,
			wantRule:  "AD-010",
		},
		{
			name:      "marathi assured profit",
			content:   "हमखास नफा मिळवण्यासाठी आजच गुंतवणूक करा",
			wantMatch: true,
			wantRule:  "AD-011",
		},
		{
			name:      "zero risk",
			content:   "Equity funds with zero risk for your family",
			wantMatch: true,
			wantRule:  "AD-004",
		},
		{
			name:      "specific return percentage",
			content:   "This fund delivered 24% annual returns recently",
			wantMatch: true,
			wantRule:  "AD-005",
		},
		{
			name:      "beats the market",
			content:   "Our strategy consistently beats the market",
			wantMatch: true,
			wantRule:  "AD-006",
		},
		{
			name:      "limited time offer",
			content:   "Limited time offer on our advisory plan",
			wantMatch: true,
			wantRule:  "AD-007",
		},
		{
			name:      "best performing fund",
			content:   "This is the best performing fund of the decade",
			wantMatch: true,
			wantRule:  "AD-008",
		},
		{
			name:      "call me now",
			content:   "Call me now to start your SIP",
			wantMatch: true,
			wantRule:  "AD-009",
		},
		// negatives
		{
			name:      "no match - potential returns",
			content:   "Mutual funds offer potential returns over the long term",
			wantMatch: false,
			wantRule:  "",
		},
		{
			name:      "no match - historical framing",
			content:   "Historically, diversified portfolios have shown steady growth",
			wantMatch: false,
			wantRule:  "",
		},
		{
			name:      "no match - disclaimer text",
			content:   "Mutual fund investments are subject to market risks",
			wantMatch: false,
			wantRule:  "",
		},
		{
			name:      "no match - managed risk wording",
			content:   "We build portfolios around managed risk and your goals",
			wantMatch: false,
			wantRule:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched bool
			var matchedCode string

			for _, rule := range rules {
				if len(rule.Match(tt.content)) > 0 {
					matched = true
					matchedCode = rule.Code
					break
				}
			}

			if matched != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", matched, tt.wantMatch)
			}

			if tt.wantMatch && matchedCode != tt.wantRule {
				t.Errorf("Matched rule code = %v, want %v", matchedCode, tt.wantRule)
			}
		})
	}
}

func TestRule_MatchSpans(t *testing.T) {
	rule := guaranteedReturns()

	content := "guaranteed returns today, and guaranteed returns tomorrow"
	spans := rule.Match(content)

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != len("guaranteed returns") {
		t.Errorf("first span = %+v, want {0 %d}", spans[0], len("guaranteed returns"))
	}
	if spans[1].Start != 30 {
		t.Errorf("second span start = %d, want 30", spans[1].Start)
	}
}

func TestRule_AppliesTo(t *testing.T) {
	hindi := prohibitedTermsHindi()
	if hindi.AppliesTo(domain.LanguageEnglish) {
		t.Error("Hindi rule should not apply to English content")
	}
	if !hindi.AppliesTo(domain.LanguageHindi) {
		t.Error("Hindi rule should apply to Hindi content")
	}

	general := guaranteedReturns()
	for _, lang := range []domain.Language{domain.LanguageEnglish, domain.LanguageHindi, domain.LanguageMarathi} {
		if !general.AppliesTo(lang) {
			t.Errorf("general rule should apply to %s", lang)
		}
	}
}

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine(DefaultRules(), zap.NewNop())

	tests := []struct {
		name        string
		content     string
		lang        domain.Language
		contentType domain.ContentType
		wantPassed  bool
		wantRules   []string
		skipRules   []string
	}{
		{
			name:        "fully compliant content",
			content:     "Mutual fund investments are subject to market risks. Read all scheme related documents carefully. E123456",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  true,
			wantRules:   nil,
		},
		{
			name:        "guaranteed returns with zero risk",
			content:     "Invest now and get guaranteed 15% returns with zero risk!",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  false,
			wantRules:   []string{"AD-001", "AD-004", "AD-005", "DISC-001", "IDENT-001"},
		},
		{
			name:        "historical framing passes the engine",
			content:     "Historically, diversified equity investments have shown strong long-term growth potential, though all investments carry market risk.",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  true,
			wantRules:   []string{"IDENT-001"},
			skipRules:   []string{"DISC-001", "AD-001"},
		},
		{
			name:        "missing disclaimer on investment content",
			content:     "Start a SIP today to build long-term wealth for your family. E123456",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  false,
			wantRules:   []string{"DISC-001"},
		},
		{
			name:        "zero risk does not satisfy the disclaimer",
			content:     "Our equity portfolio carries zero risk for investors. E123456",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  false,
			wantRules:   []string{"AD-004", "DISC-001"},
		},
		{
			name:        "hindi guarantee language",
			content:     "गारंटीड रिटर्न पाने के लिए आज ही निवेश करें",
			lang:        domain.LanguageHindi,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  false,
			wantRules:   []string{"AD-010"},
		},
		{
			name:        "hindi rule skipped for english selection",
			content:     "Our advisory desk shares weekly market education notes. E123456",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  true,
			skipRules:   []string{"AD-010", "AD-011", "LANG-001"},
		},
		{
			name:        "english text under hindi selection flags language",
			content:     "Join our weekly market education session this Saturday. E123456",
			lang:        domain.LanguageHindi,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  true,
			wantRules:   []string{"LANG-001"},
		},
		{
			name:        "too short content",
			content:     "Buy funds. E123456",
			lang:        domain.LanguageEnglish,
			contentType: domain.ContentTypeWhatsApp,
			wantPassed:  true,
			wantRules:   []string{"STRUCT-002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.content, tt.lang, tt.contentType)

			if result.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v (violations: %+v)", result.Passed, tt.wantPassed, result.Violations)
			}

			for _, code := range tt.wantRules {
				if !hasRule(result.Violations, code) {
					t.Errorf("expected violation %s, got %v", code, ruleCodes(result.Violations))
				}
			}
			for _, code := range tt.skipRules {
				if hasRule(result.Violations, code) {
					t.Errorf("did not expect violation %s, got %v", code, ruleCodes(result.Violations))
				}
			}
		})
	}
}

func TestEngine_EvaluateDeterministic(t *testing.T) {
	engine := NewEngine(DefaultRules(), zap.NewNop())
	content := "Invest now and get guaranteed 15% returns with zero risk!"

	first := engine.Evaluate(content, domain.LanguageEnglish, domain.ContentTypeWhatsApp)
	for i := 0; i < 5; i++ {
		next := engine.Evaluate(content, domain.LanguageEnglish, domain.ContentTypeWhatsApp)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs from first run", i+1)
		}
	}
}

func TestEngine_EmojiCeiling(t *testing.T) {
	engine := NewEngine(DefaultRules(), zap.NewNop())

	content := "Track your portfolio with us 😀😀😀😀 market risk applies. E123456"
	result := engine.Evaluate(content, domain.LanguageEnglish, domain.ContentTypeWhatsApp)

	if !hasRule(result.Violations, "STRUCT-003") {
		t.Errorf("expected STRUCT-003, got %v", ruleCodes(result.Violations))
	}
	// Emoji overuse is low severity and must not fail the stage.
	if !result.Passed {
		t.Error("emoji violation alone should not fail the rule stage")
	}
}

func hasRule(violations []domain.Violation, code string) bool {
	for _, v := range violations {
		if v.Rule == code {
			return true
		}
	}
	return false
}

func ruleCodes(violations []domain.Violation) []string {
	codes := make([]string, 0, len(violations))
	for _, v := range violations {
		codes = append(codes, v.Rule)
	}
	return codes
}
