package companionsdk

import "strings"

// ──────────────────────────────────────────────
// Interaction signals
// ──────────────────────────────────────────────

// InteractionSignals is the classified view of one inbound user message.
// The engines consume only this record, never raw text, so classification
// stays a replaceable heuristic.
type InteractionSignals struct {
	PositiveResponse bool `json:"positive_user_response,omitempty"`
	SharedPersonal   bool `json:"user_shared_personal,omitempty"`
	SexualContent    bool `json:"sexual_content,omitempty"`
	Affection        bool `json:"user_affection,omitempty"`
	Distant          bool `json:"user_distant,omitempty"`
	NegativeResponse bool `json:"negative_response,omitempty"`
	EmotionalSupport bool `json:"emotional_support_given,omitempty"`
	UserInitiated    bool `json:"user_initiated,omitempty"`
	IntimateMoment   bool `json:"intimate_moment,omitempty"`

	// Milestone triggers
	SharedName      bool   `json:"user_shared_name,omitempty"`
	VulnerableShare bool   `json:"user_vulnerable_share,omitempty"`
	FuturePlans     bool   `json:"discussed_future_plans,omitempty"`
	UserName        string `json:"user_name,omitempty"`
	InsideJoke      string `json:"inside_joke,omitempty"`

	// Conversation metrics
	ConversationLength  int `json:"conversation_length,omitempty"`
	ConversationMinutes int `json:"conversation_duration_minutes,omitempty"`

	// SignificantMoment marks the message for the bounded moments log.
	SignificantMoment bool   `json:"significant_moment,omitempty"`
	MomentType        string `json:"moment_type,omitempty"`
	MomentDescription string `json:"moment_description,omitempty"`

	// Reason tags trait history entries; empty means "interaction".
	Reason string `json:"reason,omitempty"`
}

// ExtendedConversation reports whether the conversation has run long
// enough to count as an extended session.
func (s InteractionSignals) ExtendedConversation() bool {
	return s.ConversationLength > 15
}

// IsPositive reports whether any positive indicator is present.
func (s InteractionSignals) IsPositive() bool {
	return s.PositiveResponse || s.SharedPersonal || s.ExtendedConversation() ||
		s.UserInitiated || s.IntimateMoment
}

// IsNegative reports whether any negative indicator is present.
func (s InteractionSignals) IsNegative() bool {
	return s.Distant || s.NegativeResponse
}

// ──────────────────────────────────────────────
// Classifier
// ──────────────────────────────────────────────

// ConversationMeta carries conversation-level context the classifier
// cannot derive from a single message.
type ConversationMeta struct {
	MessageCount     int
	DurationMinutes  int
	UserInitiated    bool
	EmotionalSupport bool
	UserName         string
}

// Classifier turns raw user text into an InteractionSignals record.
type Classifier interface {
	Classify(text string, meta ConversationMeta) InteractionSignals
}

// KeywordClassifier is the default rule-based classifier: plain substring
// matching over small word lists. Crude but zero-cost. A miss degrades to
// "no signal", never an error.
type KeywordClassifier struct {
	positiveWords  []string
	personalHints  []string
	sexualWords    []string
	affectionWords []string
	dismissives    []string
}

// NewKeywordClassifier creates a classifier with the built-in word lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		positiveWords: []string{
			"yes", "yeah", "sure", "definitely", "absolutely", "love it", "amazing", "great",
		},
		personalHints: []string{
			"i feel", "i think", "i believe", "my life", "i remember", "i used to", "i'm worried",
		},
		sexualWords: []string{
			"sexy", "hot", "turned on", "want you", "need you", "intimate", "desire",
		},
		affectionWords: []string{
			"love you", "miss you", "care about", "special", "amazing", "beautiful",
		},
		dismissives: []string{
			"ok", "sure", "yeah", "fine", "whatever",
		},
	}
}

// Classify builds the signal record for one user message.
func (c *KeywordClassifier) Classify(text string, meta ConversationMeta) InteractionSignals {
	lower := strings.ToLower(text)

	sig := InteractionSignals{
		PositiveResponse:    containsAny(lower, c.positiveWords),
		SharedPersonal:      containsAny(lower, c.personalHints),
		SexualContent:       containsAny(lower, c.sexualWords),
		Affection:           containsAny(lower, c.affectionWords),
		Distant:             c.seemsDistant(text, lower),
		UserInitiated:       meta.UserInitiated,
		EmotionalSupport:    meta.EmotionalSupport,
		ConversationLength:  meta.MessageCount,
		ConversationMinutes: meta.DurationMinutes,
		UserName:            meta.UserName,
	}
	// Long or personal messages are worth remembering.
	sig.SignificantMoment = len(text) > 100 || sig.SharedPersonal
	return sig
}

// seemsDistant flags very short or dismissive replies.
func (c *KeywordClassifier) seemsDistant(text, lower string) bool {
	if len(text) < 10 {
		return true
	}
	trimmed := strings.TrimSpace(lower)
	for _, d := range c.dismissives {
		if trimmed == d {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
