// Package agents manages the catalog of agent definitions: builtin
// agents registered at startup and user-defined agents loaded from
// markdown files with YAML front matter.
package agents

const (
	// DefaultPriority is assigned when a definition omits priority.
	// Lower values win capability selection.
	DefaultPriority = 50

	// DefaultTemperature is assigned when a definition omits temperature.
	DefaultTemperature = 0.7
)

// Definition describes one agent: its identity, the system prompt that
// shapes its behavior, and the capabilities it advertises for
// delegation.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"`

	// Temperature and Priority are pointers so an explicit zero in the
	// front matter stays distinguishable from an omitted field.
	Temperature *float64 `yaml:"temperature"`
	Priority    *int     `yaml:"priority"`

	Capabilities []string `yaml:"capabilities"`

	// SystemPrompt is the markdown body following the front matter.
	// Not part of the YAML block.
	SystemPrompt string `yaml:"-"`

	// Source is "static" for programmatic registrations or the file
	// path the definition was loaded from.
	Source string `yaml:"-"`
}

// HasCapability reports whether the definition advertises cap.
func (d *Definition) HasCapability(cap string) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// EffectivePriority returns the selection priority, DefaultPriority
// when unset.
func (d *Definition) EffectivePriority() int {
	if d.Priority == nil {
		return DefaultPriority
	}
	return *d.Priority
}

// EffectiveTemperature returns the sampling temperature,
// DefaultTemperature when unset.
func (d *Definition) EffectiveTemperature() float64 {
	if d.Temperature == nil {
		return DefaultTemperature
	}
	return *d.Temperature
}

// normalize fills defaulted fields in place.
func (d *Definition) normalize() {
	if d.Name == "" {
		d.Name = d.ID
	}
}
