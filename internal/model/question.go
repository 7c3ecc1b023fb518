package model

// PromptEntry is one (QID, example phrasing) pair from the prompt bank.
type PromptEntry struct {
	QID  string `yaml:"qid" json:"qid"`
	Text string `yaml:"text" json:"text"`
}

// MatchResult is the outcome of resolving a question against the
// canonical intents. QID is empty when no intent was resolved.
type MatchResult struct {
	QID    string  `json:"qid,omitempty"`
	Prompt string  `json:"prompt,omitempty"`
	Score  float64 `json:"score"`
}

// Matched reports whether an intent was resolved.
func (m MatchResult) Matched() bool {
	return m.QID != ""
}
