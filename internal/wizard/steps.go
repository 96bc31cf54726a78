package wizard

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is a declarative requirement on one field, expressed as a validator tag.
type Rule struct {
	Field string
	Tag   string
}

type Step struct {
	Key   string
	Title string
	Rules []Rule
}

var userTypeStep = Step{
	Key:   "user_type",
	Title: "Welcome to LocaLink",
	Rules: []Rule{{Field: FieldUserType, Tag: "required"}},
}

var reviewStep = Step{Key: "review", Title: "Ready to Launch"}

var stepTable = map[UserType][]Step{
	UserTypeBusiness: {
		userTypeStep,
		{
			Key:   "business_profile",
			Title: "Business Information",
			Rules: []Rule{
				{Field: FieldBusinessName, Tag: "required"},
				{Field: FieldCategory, Tag: "required"},
				{Field: FieldAddress, Tag: "required"},
			},
		},
		{
			Key:   "business_details",
			Title: "About Your Business",
			Rules: []Rule{{Field: FieldDescription, Tag: "required"}},
		},
		{
			Key:   "goals",
			Title: "Goals & Challenges",
			Rules: []Rule{{Field: FieldGoals, Tag: "required"}},
		},
		reviewStep,
	},
	UserTypeConsumer: {
		userTypeStep,
		{
			Key:   "consumer_services",
			Title: "What Are You Looking For",
			Rules: []Rule{
				{Field: FieldServiceTypes, Tag: "required,min=1"},
				{Field: FieldLocation, Tag: "required"},
			},
		},
		{
			Key:   "consumer_goals",
			Title: "How Can We Help",
			Rules: []Rule{{Field: FieldGeneralHelp, Tag: "required"}},
		},
		reviewStep,
	},
}

// StepsFor returns the step list of a branch. Until a type is chosen the
// business list is used; both branches share the first step.
func StepsFor(u UserType) []Step {
	if steps, ok := stepTable[u]; ok {
		return steps
	}
	return stepTable[UserTypeBusiness]
}

// Missing lists the fields of step that s does not satisfy.
func (st Step) Missing(s Submission) []string {
	var missing []string
	for _, r := range st.Rules {
		if err := validate.Var(s.value(r.Field), r.Tag); err != nil {
			missing = append(missing, r.Field)
		}
	}
	return missing
}

// IncompleteError reports the first step of a submission that fails its rules.
type IncompleteError struct {
	Step   string
	Fields []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("wizard step %q incomplete: missing %v", e.Step, e.Fields)
}

// Validate checks every step of the submission's branch independently.
func Validate(s Submission) error {
	for _, st := range StepsFor(s.UserType) {
		if missing := st.Missing(s); len(missing) > 0 {
			return &IncompleteError{Step: st.Key, Fields: missing}
		}
	}
	return nil
}
