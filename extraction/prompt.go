package extraction

import (
	"fmt"
	"strings"

	"newsdesk/types"
)

const dateLayout = "2006-01-02"

func buildPrompt(brands []string, today string) string {
	vocab := make([]string, 0, len(brands)+1)
	hasOther := false
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if strings.EqualFold(b, types.BrandOther) {
			hasOther = true
		}
		vocab = append(vocab, b)
	}
	if !hasOther {
		vocab = append(vocab, types.BrandOther)
	}

	kinds := make([]string, len(types.NewsTypes))
	for i, t := range types.NewsTypes {
		kinds[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("You are an expert automotive news analyst. Extract structured data from the news text.\n")
	b.WriteString("Return ONLY a single JSON object. No markdown code blocks, no prose before or after it.\n")
	b.WriteString("Structure:\n{\n")
	b.WriteString("  \"title\": \"Chinese headline\",\n")
	b.WriteString("  \"summary\": \"2-3 sentences Chinese summary\",\n")
	fmt.Fprintf(&b, "  \"brand\": \"Primary brand, exactly one of: %s\",\n", strings.Join(vocab, ", "))
	fmt.Fprintf(&b, "  \"type\": \"Exactly one of: %s\",\n", strings.Join(kinds, ", "))
	fmt.Fprintf(&b, "  \"date\": \"YYYY-MM-DD (default: %s)\",\n", today)
	b.WriteString("  \"url\": \"URL or empty\",\n")
	b.WriteString("  \"image_keywords\": \"3-6 English keywords\",\n")
	fmt.Fprintf(&b, "  \"sentiment\": \"One of: %s\",\n", strings.Join(types.Sentiments, ", "))
	b.WriteString("  \"tags\": [\"short topic tags\"]\n")
	b.WriteString("}\n")
	return b.String()
}
