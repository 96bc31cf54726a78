package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Placeholder values used when an automation payload omits a field.
const (
	DefaultPromotionText    = "New promotion generated from n8n workflow"
	DefaultForecast         = "Sales forecast updated from automation"
	DefaultProjectedRevenue = "$25,000"
)

// minImageLength separates real base64 payloads from short stray strings.
const minImageLength = 100

// Probed in order; the first present non-empty string wins.
var (
	textFields  = []string{"Descrption", "Description", "description", "socialMediaDescription", "caption", "text"}
	imageFields = []string{"Image", "image", "imageBase64", "image_base64", "imageData", "data"}
)

const nestedTextField = "personalizedPromotions.socialMediaDescription"

func DefaultKeyInsights() []string {
	return []string{
		"Data updated from n8n automation",
		"Real-time webhook integration active",
		"Custom promotion generated",
	}
}

// ProcessingInfo is attached to rawData so automation authors can see what
// the relay picked up.
type ProcessingInfo struct {
	TextFound      bool   `json:"textFound"`
	TextField      string `json:"textField,omitempty"`
	ImageFound     bool   `json:"imageFound"`
	ImageField     string `json:"imageField,omitempty"`
	ImageSizeBytes int    `json:"imageSizeBytes"`
	ProcessedAt    string `json:"processedAt"`
}

// NormalizeBusiness maps an arbitrary automation payload onto a Record.
// It never fails: missing fields fall back to fixed defaults.
func NormalizeBusiness(raw map[string]any, now time.Time) (Record, Outcome) {
	var (
		out  Outcome
		info ProcessingInfo
		ts   = FormatTimestamp(now)
	)

	text, field := probeText(raw)
	if field != "" {
		out.TextFound = true
		info.TextFound = true
		info.TextField = field
	} else {
		text = DefaultPromotionText
	}

	promo := Promotions{SocialMediaDescription: text, ImageURL: StockImageURL}
	if b64, field := probeImage(raw); field != "" {
		out.ImageFound = true
		info.ImageFound = true
		info.ImageField = field
		info.ImageSizeBytes = decodedSize(b64)
		promo.ImageURL = "data:image/jpeg;base64," + b64
		promo.ImageBlob = &b64
	}

	forecast, ok := stringField(raw, "forecast")
	if !ok {
		forecast = DefaultForecast
	}
	revenue, ok := revenueField(raw["projectedRevenue"])
	if !ok {
		revenue = DefaultProjectedRevenue
	}
	insights := stringList(raw["keyInsights"])
	if insights == nil {
		insights = DefaultKeyInsights()
	}

	info.ProcessedAt = ts
	rawData := copyMap(raw)
	rawData["processingInfo"] = info

	return Record{
		PersonalizedPromotions: promo,
		SalesForecast: SalesForecast{
			Forecast:         forecast,
			ProjectedRevenue: revenue,
			KeyInsights:      insights,
		},
		Timestamp: ts,
		Source:    SourceAutomation,
		RawData:   rawData,
	}, out
}

func probeText(raw map[string]any) (string, string) {
	for _, name := range textFields {
		if s, ok := stringField(raw, name); ok {
			return s, name
		}
	}
	if nested, ok := raw["personalizedPromotions"].(map[string]any); ok {
		if s, ok := stringField(nested, "socialMediaDescription"); ok {
			return s, nestedTextField
		}
	}
	return "", ""
}

// probeImage returns the cleaned base64 body of the first candidate image.
func probeImage(raw map[string]any) (string, string) {
	for _, name := range imageFields {
		s, ok := raw[name].(string)
		if !ok || len(s) <= minImageLength {
			continue
		}
		if cleaned := cleanBase64(s); cleaned != "" {
			return cleaned, name
		}
	}
	return "", ""
}

func cleanBase64(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func decodedSize(b64 string) int {
	n := len(b64) * 3 / 4
	n -= strings.Count(b64[max(0, len(b64)-2):], "=")
	return max(n, 0)
}

// revenueField accepts a preformatted string or a bare number.
func revenueField(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		x = strings.TrimSpace(x)
		return x, x != ""
	case float64:
		return formatCurrency(x), true
	case int:
		return formatCurrency(float64(x)), true
	}
	return "", false
}

func formatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	total := int64(math.Round(v * 100))
	digits := strconv.FormatInt(total/100, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if cents := total % 100; cents > 0 {
		fmt.Fprintf(&b, ".%02d", cents)
	}
	return sign + "$" + b.String()
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// stringList returns nil unless v is a non-empty array with at least one
// usable entry.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok && len(ss) > 0 {
			return append([]string(nil), ss...)
		}
		return nil
	}
	var out []string
	for _, item := range items {
		switch x := item.(type) {
		case string:
			if x = strings.TrimSpace(x); x != "" {
				out = append(out, x)
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
