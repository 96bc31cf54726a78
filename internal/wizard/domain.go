package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField    = errors.New("unknown wizard field")
	ErrFieldType       = errors.New("wrong value type for wizard field")
	ErrUnknownUserType = errors.New("unknown user type")
)

// UserType selects the wizard branch.
type UserType int

const (
	UserTypeUnset UserType = iota
	UserTypeBusiness
	UserTypeConsumer
)

func (u UserType) String() string {
	switch u {
	case UserTypeBusiness:
		return "business"
	case UserTypeConsumer:
		return "consumer"
	default:
		return ""
	}
}

func ParseUserType(s string) (UserType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UserTypeUnset, nil
	case "business":
		return UserTypeBusiness, nil
	case "consumer":
		return UserTypeConsumer, nil
	default:
		return UserTypeUnset, fmt.Errorf("%w: %q", ErrUnknownUserType, s)
	}
}

func (u UserType) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UserType) UnmarshalText(b []byte) error {
	parsed, err := ParseUserType(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Field names accepted by Controller.SetField.
const (
	FieldUserType        = "userType"
	FieldBusinessName    = "businessName"
	FieldCategory        = "category"
	FieldDescription     = "description"
	FieldAddress         = "address"
	FieldGoals           = "goals"
	FieldChallenges      = "challenges"
	FieldPreferences     = "preferences"
	FieldServiceTypes    = "serviceTypes"
	FieldLocation        = "location"
	FieldGeneralHelp     = "generalHelp"
	FieldAnalysisType    = "analysisType"
	FieldGoalDescription = "goalDescription"
)

type BusinessProfile struct {
	Name        string `json:"businessName"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

type ConsumerProfile struct {
	Preferences  map[string]any `json:"preferences,omitempty"`
	ServiceTypes []string       `json:"serviceTypes,omitempty"`
	Location     string         `json:"location"`
}

// Submission holds everything the wizard collects. It lives only until the
// terminal submit.
type Submission struct {
	UserType        UserType        `json:"userType"`
	Business        BusinessProfile `json:"business"`
	Consumer        ConsumerProfile `json:"consumer"`
	Goals           string          `json:"goals"`
	Challenges      string          `json:"challenges"`
	GeneralHelp     string          `json:"generalHelp"`
	AnalysisType    string          `json:"analysisType"`
	GoalDescription string          `json:"goalDescription"`
}

func (s *Submission) set(name string, value any) error {
	if name == FieldServiceTypes {
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%w: %s expects []string, got %T", ErrFieldType, name, value)
		}
		s.Consumer.ServiceTypes = normalizeSet(v)
		return nil
	}
	if name == FieldPreferences {
		v, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s expects map[string]any, got %T", ErrFieldType, name, value)
		}
		s.Consumer.Preferences = v
		return nil
	}

	target := s.stringField(name)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s expects string, got %T", ErrFieldType, name, value)
	}
	*target = v
	return nil
}

func (s *Submission) stringField(name string) *string {
	switch name {
	case FieldBusinessName:
		return &s.Business.Name
	case FieldCategory:
		return &s.Business.Category
	case FieldDescription:
		return &s.Business.Description
	case FieldAddress:
		return &s.Business.Address
	case FieldGoals:
		return &s.Goals
	case FieldChallenges:
		return &s.Challenges
	case FieldLocation:
		return &s.Consumer.Location
	case FieldGeneralHelp:
		return &s.GeneralHelp
	case FieldAnalysisType:
		return &s.AnalysisType
	case FieldGoalDescription:
		return &s.GoalDescription
	}
	return nil
}

// value returns the field in the shape its validation tag expects.
func (s Submission) value(name string) any {
	switch name {
	case FieldUserType:
		return s.UserType.String()
	case FieldServiceTypes:
		return normalizeSet(s.Consumer.ServiceTypes)
	case FieldPreferences:
		return s.Consumer.Preferences
	}
	if p := s.stringField(name); p != nil {
		return strings.TrimSpace(*p)
	}
	return nil
}

func normalizeSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
