package domain

import (
	"fmt"
	"strings"
)

// Organ is a selectable region of the bio-digital twin body model.
type Organ string

// Organs of the body model
const (
	OrganBrain      Organ = "Brain"
	OrganLungs      Organ = "Lungs"
	OrganHeart      Organ = "Heart"
	OrganLiver      Organ = "Liver"
	OrganStomach    Organ = "Stomach"
	OrganKidneys    Organ = "Kidneys"
	OrganIntestines Organ = "Intestines"
)

var organs = []Organ{OrganBrain, OrganLungs, OrganHeart, OrganLiver, OrganStomach, OrganKidneys, OrganIntestines}

// Organs lists every organ of the body model.
func Organs() []Organ {
	out := make([]Organ, len(organs))
	copy(out, organs)
	return out
}

// ParseOrgan matches an organ name case-insensitively.
func ParseOrgan(s string) (Organ, error) {
	name := strings.TrimSpace(s)
	for _, o := range organs {
		if strings.EqualFold(string(o), name) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrgan, s)
}

// TwinProfile describes the person the bio-digital twin simulates.
type TwinProfile struct {
	Age      int    `json:"age"`
	Activity string `json:"activity"`
}

// DefaultTwinProfile is the profile used for organ insights.
func DefaultTwinProfile() TwinProfile {
	return TwinProfile{Age: 35, Activity: "moderate"}
}
