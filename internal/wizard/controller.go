package wizard

import "math"

// Controller tracks the wizard position and collected values. It performs no
// I/O.
type Controller struct {
	step int
	sub  Submission
}

func NewController() *Controller {
	return &Controller{step: 1}
}

func (c *Controller) SetUserType(u UserType) {
	c.sub.UserType = u
	if c.step > c.StepCount() {
		c.step = 1
	}
}

func (c *Controller) SetField(name string, value any) error {
	if name == FieldUserType {
		s, ok := value.(string)
		if !ok {
			if u, isType := value.(UserType); isType {
				c.SetUserType(u)
				return nil
			}
			return ErrFieldType
		}
		u, err := ParseUserType(s)
		if err != nil {
			return err
		}
		c.SetUserType(u)
		return nil
	}
	return c.sub.set(name, value)
}

// Step is the 1-based index of the current step.
func (c *Controller) Step() int {
	return c.step
}

func (c *Controller) StepCount() int {
	return len(StepsFor(c.sub.UserType))
}

func (c *Controller) CurrentStep() Step {
	return StepsFor(c.sub.UserType)[c.step-1]
}

func (c *Controller) CurrentStepValid() bool {
	return len(c.CurrentStep().Missing(c.sub)) == 0
}

// Advance moves forward one step. It does nothing when the current step is
// invalid or already the last one.
func (c *Controller) Advance() bool {
	if c.step >= c.StepCount() || !c.CurrentStepValid() {
		return false
	}
	c.step++
	return true
}

func (c *Controller) Retreat() bool {
	if c.step <= 1 {
		return false
	}
	c.step--
	return true
}

// Progress is the completion percentage shown next to the step counter.
func (c *Controller) Progress() int {
	return int(math.Round(float64(c.step) / float64(c.StepCount()) * 100))
}

func (c *Controller) OnLastStep() bool {
	return c.step == c.StepCount()
}

func (c *Controller) Snapshot() Submission {
	out := c.sub
	if c.sub.Consumer.ServiceTypes != nil {
		out.Consumer.ServiceTypes = append([]string(nil), c.sub.Consumer.ServiceTypes...)
	}
	return out
}

// Reset discards everything collected, as after a terminal submit.
func (c *Controller) Reset() {
	c.step = 1
	c.sub = Submission{}
}
