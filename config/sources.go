package config

import (
	"fmt"
	"os"
	"strings"

	"newsdesk/types"

	"gopkg.in/yaml.v3"
)

type sourcesFile struct {
	Sources []types.FeedSource `yaml:"sources"`
}

// LoadSources reads a feed source list from a YAML or JSON file. The file may
// hold either a bare list or a document with a top-level "sources" key.
func LoadSources(path string) ([]types.FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a feed source document.
func ParseSources(data []byte) ([]types.FeedSource, error) {
	var list []types.FeedSource
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc sourcesFile
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("parse sources: %w", err2)
		}
		list = doc.Sources
	}

	out := make([]types.FeedSource, 0, len(list))
	for i, src := range list {
		src.URL = strings.TrimSpace(src.URL)
		if src.URL == "" {
			return nil, fmt.Errorf("source %d (%s) has no url", i, src.Name)
		}
		src.Type = strings.ToLower(strings.TrimSpace(src.Type))
		if src.Type == "" {
			src.Type = types.SourceAggregator
		}
		out = append(out, src)
	}
	return out, nil
}
