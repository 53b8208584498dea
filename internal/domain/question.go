package domain

import "time"

// DateKeyLayout is the MM-DD-YYYY partition key format for daily documents.
const DateKeyLayout = "01-02-2006"

// DateKey renders the calendar date key for an instant in the given location.
func DateKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses an MM-DD-YYYY key into midnight of that day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateKeyLayout, key, loc)
}

// Source is the static configuration of one news listing.
type Source struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label" json:"label"`
	ListingURL string `yaml:"listingUrl" json:"listingUrl"`
	Strategy   string `yaml:"strategy" json:"strategy"`
}

// ArticleRef identifies the article a question was generated from.
type ArticleRef struct {
	Title   Text   `json:"title"`
	URL     string `json:"url"`
	Summary Text   `json:"summary"`
}

// Option is one answer choice of a poll question.
type Option struct {
	ID    string `json:"id"`
	Label Text   `json:"label"`
}

// Notification carries the localized push payload for a question.
type Notification struct {
	Title Text `json:"title"`
	Body  Text `json:"body"`
}

// GeneratedPayload is the structured model output for one candidate question.
type GeneratedPayload struct {
	Article      ArticleRef          `json:"article"`
	Tags         []map[string]string `json:"tags"`
	Question     Text                `json:"question"`
	Options      []Option            `json:"options"`
	Analysis     Text                `json:"analysis"`
	Notification Notification        `json:"notification"`
}

// VoteResults is the incremental tally consumers update after publication.
// Every persisted question starts with a zero tally covering all option ids.
type VoteResults struct {
	TotalResponses int              `json:"totalResponses"`
	PerOption      map[string]int   `json:"perOption"`
	Breakdown      []map[string]any `json:"breakdown"`
	LastUpdated    time.Time        `json:"lastUpdated"`
}

// ZeroResults builds the initial tally for a question's options.
func ZeroResults(options []Option, now time.Time) VoteResults {
	perOption := make(map[string]int, len(options))
	for _, opt := range options {
		perOption[opt.ID] = 0
	}
	return VoteResults{
		TotalResponses: 0,
		PerOption:      perOption,
		Breakdown:      []map[string]any{},
		LastUpdated:    now,
	}
}

// NewsSource is the persisted projection of the originating Source.
type NewsSource struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// GenerationMeta records how a question was produced.
type GenerationMeta struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	Model           string    `json:"model"`
	PromptVersion   string    `json:"promptVersion"`
	ListingStrategy string    `json:"listingStrategy"`
}

// QuestionDocument is the persisted shape of one daily question.
type QuestionDocument struct {
	DateKey        string              `json:"dateKey"`
	Order          int                 `json:"order"`
	Question       Text                `json:"question"`
	Options        []Option            `json:"options"`
	Article        ArticleRef          `json:"article"`
	Tags           []map[string]string `json:"tags"`
	Analysis       Text                `json:"analysis"`
	Notification   Notification        `json:"notification"`
	NewsSource     NewsSource          `json:"newsSource"`
	ListingExcerpt string              `json:"listingExcerpt"`
	Results        VoteResults         `json:"results"`
	Source         GenerationMeta      `json:"source"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// QuestionSummary is the per-question projection embedded in the day document.
type QuestionSummary struct {
	ID     string `json:"id"`
	Order  int    `json:"order"`
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// DayDocument aggregates one calendar day. The primary question's fields are
// embedded at the top level so single-question consumers keep working.
type DayDocument struct {
	QuestionDocument

	QuestionCount     int               `json:"questionCount"`
	PrimaryQuestionID string            `json:"primaryQuestionId"`
	QuestionIDs       []string          `json:"questionIds"`
	QuestionsSummary  []QuestionSummary `json:"questionsSummary"`
}

// RecentArticle is one previously used article collected from prior days.
type RecentArticle struct {
	DateKey string `json:"dateKey"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// PushMessage is the prepared payload for the device push sink.
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// SocialPost is the prepared payload for the social publish sink.
type SocialPost struct {
	Caption string `json:"caption"`
	DateKey string `json:"dateKey"`
}
