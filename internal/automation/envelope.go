package automation

import "time"

// Events understood by the n8n dashboard workflow.
const (
	EventBusinessWizardCompleted = "business_wizard_completed"
	EventConsumerWizardCompleted = "consumer_wizard_completed"
	EventAIAnalysisRequest       = "ai_analysis_request"
)

const (
	SourceWizard           = "localink_wizard"
	SourceDashboardRequest = "dashboard_request"
)

// Envelope is the JSON body posted to the automation when a wizard completes
// or an analysis is requested. It is sent once and never stored.
type Envelope struct {
	Event             string           `json:"event"`
	Business          *BusinessPayload `json:"business,omitempty"`
	Consumer          *ConsumerPayload `json:"consumer,omitempty"`
	RequestedAnalysis []string         `json:"requestedAnalysis,omitempty"`
	User              User             `json:"user"`
	Timestamp         string           `json:"timestamp"`
	Source            string           `json:"source"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type BusinessPayload struct {
	ID          string `json:"id,omitempty"`
	UserType    string `json:"user_type"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Goals       string `json:"goals,omitempty"`
	Challenges  string `json:"challenges,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type ConsumerPayload struct {
	UserType        string         `json:"user_type"`
	Preferences     map[string]any `json:"preferences"`
	ServiceTypes    []string       `json:"serviceTypes"`
	Location        string         `json:"location"`
	GeneralHelp     string         `json:"generalHelp"`
	AnalysisType    string         `json:"analysisType"`
	GoalDescription string         `json:"goalDescription"`
	CreatedAt       string         `json:"created_at"`
}

// Timestamp formats t the way every outbound payload carries time.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
