package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/types"

	"github.com/araddon/dateparse"
)

var fencePattern = regexp.MustCompile("(?i)```(?:json)?")

// decode parses model output in two stages: as-is first, then after removing
// code fences and slicing from the first '{' to the last '}'.
func decode(raw string) (map[string]any, error) {
	if m, err := decodeStrict(raw); err == nil {
		return m, nil
	}
	return decodeSalvaged(raw)
}

func decodeStrict(raw string) (map[string]any, error) {
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	if m == nil {
		return nil, fmt.Errorf("JSON is not an object")
	}
	return m, nil
}

func decodeSalvaged(raw string) (map[string]any, error) {
	clean := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first < 0 || last <= first {
		return nil, fmt.Errorf("%w: no JSON object found", apperr.ErrUnparsableOutput)
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(clean[first : last+1])))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnparsableOutput, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: JSON is not an object", apperr.ErrUnparsableOutput)
	}
	return m, nil
}

type coerceOptions struct {
	brands      []string
	brandPolicy string
	today       string
}

func coerce(m map[string]any, opts coerceOptions) types.ExtractedNewsData {
	return types.ExtractedNewsData{
		Title:         text(m["title"]),
		Summary:       text(m["summary"]),
		Brand:         coerceBrand(text(m["brand"]), opts.brands, opts.brandPolicy),
		Type:          coerceType(text(m["type"])),
		Date:          coerceDate(text(m["date"]), opts.today),
		URL:           text(m["url"]),
		ImageKeywords: strings.Join(list(m["image_keywords"]), ", "),
		Sentiment:     coerceSentiment(text(m["sentiment"])),
		Tags:          list(m["tags"]),
	}
}

// text renders scalar JSON values as a trimmed string.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		return strings.Join(list(t), ", ")
	default:
		return ""
	}
}

// list accepts either a JSON array or a comma separated string.
func list(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			parts = append(parts, text(item))
		}
	case string:
		parts = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == '，' || r == ';' })
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// coerceBrand maps the model's brand onto the known vocabulary. A brand that
// names a known entry (fully or by its first word) takes the canonical
// spelling. Anything else is kept verbatim under the preserve policy or
// replaced by BrandOther.
func coerceBrand(brand string, known []string, policy string) string {
	if brand == "" {
		return types.BrandOther
	}
	for _, k := range known {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if strings.EqualFold(brand, k) {
			return k
		}
		if f := strings.Fields(k); len(f) > 1 && strings.EqualFold(brand, f[0]) {
			return k
		}
	}
	if strings.EqualFold(brand, types.BrandOther) || policy == config.BrandPolicyOther {
		return types.BrandOther
	}
	return brand
}

func coerceType(v string) types.NewsType {
	for _, t := range types.NewsTypes {
		if strings.EqualFold(v, string(t)) {
			return t
		}
	}
	return types.NewsOther
}

func coerceSentiment(v string) string {
	v = strings.ToLower(v)
	for _, s := range types.Sentiments {
		if v == s {
			return s
		}
	}
	return types.SentimentNeutral
}

// coerceDate normalizes to YYYY-MM-DD. Missing or unreadable dates become today.
func coerceDate(v, today string) string {
	if v == "" {
		return today
	}
	if _, err := time.Parse(dateLayout, v); err == nil {
		return v
	}
	t, err := dateparse.ParseAny(v)
	if err != nil {
		return today
	}
	return t.Format(dateLayout)
}
