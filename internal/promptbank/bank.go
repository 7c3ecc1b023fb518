// Package promptbank holds the curated example phrasings per canonical
// intent (QID) that the semantic matcher searches over.
package promptbank

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/aide-analytics/aide-cli/internal/model"
)

// Bank is the immutable set of prompt entries, loaded once at startup.
type Bank struct {
	entries []model.PromptEntry
	byQID   map[string][]string
}

// New builds a Bank from entries, preserving order.
func New(entries []model.PromptEntry) *Bank {
	b := &Bank{byQID: make(map[string][]string)}
	for _, e := range entries {
		if e.QID == "" || e.Text == "" {
			continue
		}
		b.entries = append(b.entries, e)
		b.byQID[e.QID] = append(b.byQID[e.QID], e.Text)
	}
	return b
}

// Entries returns all (QID, phrasing) pairs in bank order.
func (b *Bank) Entries() []model.PromptEntry {
	return b.entries
}

// Len returns the number of entries.
func (b *Bank) Len() int {
	return len(b.entries)
}

// Contains reports whether the QID has at least one phrasing.
func (b *Bank) Contains(qid string) bool {
	_, ok := b.byQID[qid]
	return ok
}

// Prompts returns the phrasings registered for a QID.
func (b *Bank) Prompts(qid string) []string {
	return b.byQID[qid]
}

// QIDs returns the distinct QIDs in sorted order.
func (b *Bank) QIDs() []string {
	out := make([]string, 0, len(b.byQID))
	for qid := range b.byQID {
		out = append(out, qid)
	}
	sort.Strings(out)
	return out
}

// FromYAML loads a bank from a YAML file shaped as
// "QID: [phrasing, ...]" with QIDs kept in sorted order.
func FromYAML(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "promptbank: read file")
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "promptbank: parse yaml")
	}
	qids := make([]string, 0, len(raw))
	for qid := range raw {
		qids = append(qids, qid)
	}
	sort.Strings(qids)
	var entries []model.PromptEntry
	for _, qid := range qids {
		for _, text := range raw[qid] {
			entries = append(entries, model.PromptEntry{QID: qid, Text: text})
		}
	}
	if len(entries) == 0 {
		return nil, eris.Errorf("promptbank: %s contains no prompts", path)
	}
	return New(entries), nil
}

// Default returns the built-in prompt bank.
func Default() *Bank {
	var entries []model.PromptEntry
	add := func(qid string, texts ...string) {
		for _, t := range texts {
			entries = append(entries, model.PromptEntry{QID: qid, Text: t})
		}
	}
	add("Q1",
		"Which accounts had CM% < 30 in the last quarter?",
		"Clients with less than 30% margin last quarter",
		"Which accounts had margins below 30 percent",
		"Show me accounts with less than 40% margin",
		"List clients with margin below threshold",
	)
	add("Q2",
		"Which cost caused margin drop last month?",
		"Which cost increased last month vs previous month?",
		"What caused margin drop in Transportation?",
		"Which cost item triggered margin decline last month?",
		"Why did margin fall last month in Manufacturing?",
		"Last month's margin dropped — what cost increased?",
		"Find clients with higher costs and lower margin this month",
		"Margin dropped in Automotive — which cost increased?",
		"Identify cost buckets responsible for margin drop",
		"Segment-wise cost increase that led to margin decline",
	)
	add("Q3",
		"Compare C&B cost by segment over two quarters",
		"Which segments had highest C&B change",
		"Show C&B cost trend by segment",
		"C&B cost comparison Q1 vs Q2 by segment",
		"Segment wise change in C&B cost",
	)
	add("Q4",
		"What is the MoM trend of C&B cost?",
		"C&B vs revenue monthly trend",
		"Month over month comparison of C&B with revenue",
		"C&B cost as percentage of revenue trend",
		"Compare C&B cost % with revenue monthly",
		"What is the YoY, QoQ, MoM revenue trend?",
		"YoY revenue trend by account",
		"How has revenue changed quarter over quarter",
		"Monthly revenue comparison by client",
		"Revenue trends for each BU or DU",
		"Revenue trend analysis by DU or BU",
		"Show revenue trend without time filter",
		"Client wise revenue change trends",
		"Trend of revenue growth",
		"Compare revenue over time",
	)
	add("Q6",
		"Realized Rate Drop",
		"realized rate drop",
		"Realized Rate",
		"realized rate",
	)
	add("Q7",
		"What is M-o-M HC for an account",
		"Show monthly headcount trend per client",
		"FTE trend over months",
		"Client wise MoM headcount movement",
		"Monthly total billable hours per account",
		"MoM FTE for customers",
		"Headcount trend month over month",
		"Month-wise headcount per client",
	)
	add("Q8",
		"What is the UT trend for last 2 quarters for a DU/BU/account?",
		"Show utilization by account",
		"How is utilization % trending?",
		"Compare utilization quarter over quarter",
		"What is total UT% by BU this year?",
		"Utilization YoY trend",
		"Which DU has the highest UT this quarter?",
		"Utilization rate over time for each account",
		"Quarterly utilization % per segment",
		"Trend of utilization over time",
	)
	add("Q9",
		"Revenue Per Person",
		"revenue per person",
	)
	add("Q10",
		"DU wise Fresher UT Trends",
		"fresher ut trend",
		"ut% trend for freshers",
		"fresher utilization trend by DU",
	)
	return New(entries)
}
