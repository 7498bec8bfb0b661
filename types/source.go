package types

import "strings"

// Feed source types. Aggregator feeds carry mixed topics and are keyword filtered.
const (
	SourceDirect     = "direct"
	SourceAggregator = "aggregator"
)

// FeedSource is a configured RSS/Atom endpoint.
type FeedSource struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`
	Type string `json:"type" yaml:"type" mapstructure:"type"`
}

// IsAggregator reports whether items from the source need keyword filtering.
// Unknown types are treated as aggregators.
func (s FeedSource) IsAggregator() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Type), SourceDirect)
}
