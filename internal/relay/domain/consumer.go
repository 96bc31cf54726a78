package domain

import (
	"strings"
	"time"
)

type Recommendations struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

type Deal struct {
	Business   string `json:"business"`
	Offer      string `json:"offer"`
	ValidUntil string `json:"validUntil"`
}

type LocalDeals struct {
	Title string `json:"title"`
	Deals []Deal `json:"deals"`
}

type CommunityInsights struct {
	Title    string   `json:"title"`
	Insights []string `json:"insights"`
}

// ConsumerRecord is the consumer dashboard content held by the relay.
type ConsumerRecord struct {
	PersonalizedRecommendations Recommendations   `json:"personalizedRecommendations"`
	LocalDeals                  LocalDeals        `json:"localDeals"`
	CommunityInsights           CommunityInsights `json:"communityInsights"`
	Timestamp                   string            `json:"timestamp"`
	Source                      string            `json:"source"`
	RawData                     map[string]any    `json:"rawData,omitempty"`
}

func (r ConsumerRecord) Stamp() string { return r.Timestamp }

func (r ConsumerRecord) IsPlaceholder() bool {
	return strings.HasPrefix(r.Source, defaultSourcePrefix)
}

const (
	recommendationsTitle = "Personalized Recommendations"
	dealsTitle           = "Local Deals & Promotions"
	insightsTitle        = "Community Insights"
)

// DefaultConsumerRecord is served before any consumer payload has been stored.
func DefaultConsumerRecord(now time.Time) ConsumerRecord {
	return ConsumerRecord{
		PersonalizedRecommendations: Recommendations{
			Title:       recommendationsTitle,
			Description: "Connect your preferences to see personalized local business recommendations",
			Recommendations: []string{
				"Discover local businesses tailored to your interests",
				"Get notified about deals from your favorite categories",
				"Find new places based on community activity",
			},
		},
		LocalDeals: LocalDeals{
			Title: dealsTitle,
			Deals: []Deal{
				{Business: "Sample Local Business", Offer: "Connect to see real deals in your area", ValidUntil: "ongoing"},
			},
		},
		CommunityInsights: CommunityInsights{
			Title: insightsTitle,
			Insights: []string{
				"Connect to see insights about your local community",
				"Track new business openings in your area",
				"Stay updated on local events and activities",
			},
		},
		Timestamp: FormatTimestamp(now),
		Source:    SourceConsumerDefault,
	}
}

func defaultRecommendations() []string {
	return []string{
		"Check out the weekend pastry sale at Local Bakery",
		"New restaurant opened nearby with great reviews",
		"Local fitness center offering trial classes",
	}
}

func defaultDeals() []Deal {
	return []Deal{
		{Business: "Local Coffee Shop", Offer: "20% off morning coffee", ValidUntil: "2025-01-15"},
		{Business: "Neighborhood Bookstore", Offer: "Buy 2 get 1 free on selected books", ValidUntil: "2025-01-20"},
	}
}

func defaultInsights() []string {
	return []string{
		"3 new businesses opened in your area this month",
		"Local farmers market has expanded hours",
		"Community event: Art walk next weekend",
	}
}

// NormalizeConsumer maps a consumer automation payload onto a ConsumerRecord,
// filling every missing section with fixed defaults.
func NormalizeConsumer(raw map[string]any, now time.Time) (ConsumerRecord, Outcome) {
	var out Outcome

	title, ok := stringField(raw, "title")
	if ok {
		out.TextFound = true
	} else {
		title = recommendationsTitle
	}
	desc, ok := stringField(raw, "description")
	if ok {
		out.TextFound = true
	} else {
		desc = "Based on your preferences and local business activity"
	}

	recs := stringList(raw["recommendations"])
	if recs == nil {
		recs = defaultRecommendations()
	} else {
		out.TextFound = true
	}

	deals := dealList(raw["deals"])
	if deals == nil {
		deals = defaultDeals()
	} else {
		out.TextFound = true
	}

	insights := stringList(raw["insights"])
	if insights == nil {
		insights = defaultInsights()
	} else {
		out.TextFound = true
	}

	return ConsumerRecord{
		PersonalizedRecommendations: Recommendations{Title: title, Description: desc, Recommendations: recs},
		LocalDeals:                  LocalDeals{Title: dealsTitle, Deals: deals},
		CommunityInsights:           CommunityInsights{Title: insightsTitle, Insights: insights},
		Timestamp:                   FormatTimestamp(now),
		Source:                      SourceConsumerAutomation,
		RawData:                     copyMap(raw),
	}, out
}

func dealList(v any) []Deal {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var deals []Deal
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := Deal{}
		d.Business, _ = stringField(m, "business")
		d.Offer, _ = stringField(m, "offer")
		d.ValidUntil, _ = stringField(m, "validUntil")
		if d.Business == "" && d.Offer == "" {
			continue
		}
		deals = append(deals, d)
	}
	return deals
}
