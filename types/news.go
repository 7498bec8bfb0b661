package types

// NewsType is the closed vocabulary of news categories.
type NewsType string

const (
	NewsLaunch     NewsType = "New Car Launch"
	NewsPolicy     NewsType = "Policy & Regulation"
	NewsSales      NewsType = "Market Sales"
	NewsPersonnel  NewsType = "Personnel Changes"
	NewsCompetitor NewsType = "Competitor Dynamics"
	NewsOther      NewsType = "Other"
)

// NewsTypes lists every valid NewsType in display order.
var NewsTypes = []NewsType{NewsLaunch, NewsPolicy, NewsSales, NewsPersonnel, NewsCompetitor, NewsOther}

// Sentiment values accepted in extracted records.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Sentiments lists every valid sentiment.
var Sentiments = []string{SentimentPositive, SentimentNeutral, SentimentNegative}

// BrandOther is the sentinel brand for anything outside the known vocabulary.
const BrandOther = "Other"

// ExtractedNewsData is a validated, structured news record produced by extraction.
type ExtractedNewsData struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Brand         string   `json:"brand"`
	Type          NewsType `json:"type"`
	Date          string   `json:"date"`
	URL           string   `json:"url"`
	ImageKeywords string   `json:"image_keywords"`
	Sentiment     string   `json:"sentiment"`
	Tags          []string `json:"tags"`
}
