package domain

import (
	"strings"
	"time"
)

// Record sources. Anything starting with "default_" is placeholder content.
const (
	SourceAutomation         = "n8n_webhook"
	SourceConsumerAutomation = "consumer_automation"
	SourceDefault            = "default_dashboard_data"
	SourceConsumerDefault    = "default_consumer_data"

	defaultSourcePrefix = "default_"
)

// StockImageURL is shown when the automation did not send an image.
const StockImageURL = "https://images.unsplash.com/photo-1509042239860-f550ce710b93?w=800&h=600&fit=crop"

const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as ISO-8601 UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type Promotions struct {
	SocialMediaDescription string  `json:"socialMediaDescription"`
	ImageURL               string  `json:"imageUrl"`
	ImageBlob              *string `json:"imageBlob"`
}

type SalesForecast struct {
	Forecast         string   `json:"forecast"`
	ProjectedRevenue string   `json:"projectedRevenue"`
	KeyInsights      []string `json:"keyInsights"`
}

// Record is the business dashboard content held by the relay.
type Record struct {
	PersonalizedPromotions Promotions     `json:"personalizedPromotions"`
	SalesForecast          SalesForecast  `json:"salesForecast"`
	Timestamp              string         `json:"timestamp"`
	Source                 string         `json:"source"`
	RawData                map[string]any `json:"rawData,omitempty"`
}

func (r Record) Stamp() string { return r.Timestamp }

func (r Record) IsPlaceholder() bool { return strings.HasPrefix(r.Source, defaultSourcePrefix) }

// DefaultRecord is served before any automation payload has been stored.
func DefaultRecord(now time.Time) Record {
	return Record{
		PersonalizedPromotions: Promotions{
			SocialMediaDescription: "Your personalized promotion will appear here once your automation sends its first result",
			ImageURL:               StockImageURL,
		},
		SalesForecast: SalesForecast{
			Forecast:         "Connect your automation to see a sales forecast for your business",
			ProjectedRevenue: "Not available yet",
			KeyInsights: []string{
				"Complete the onboarding wizard to request an analysis",
				"Promotions and forecasts are generated by your automation workflow",
				"This dashboard refreshes automatically when new data arrives",
			},
		},
		Timestamp: FormatTimestamp(now),
		Source:    SourceDefault,
	}
}

// Outcome reports which parts of a payload carried real content.
type Outcome struct {
	TextFound  bool
	ImageFound bool
}

func (o Outcome) RealContentFound() bool {
	return o.TextFound || o.ImageFound
}
