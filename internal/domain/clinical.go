package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

// Chat roles
const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleUser    Role = "user"
	RoleMentor  Role = "mentor"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is an ordered conversation.
type Transcript []ChatMessage

// Format renders the transcript as "role: text" lines for prompts.
func (t Transcript) Format() string {
	lines := make([]string, 0, len(t))
	for _, m := range t {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Text))
	}
	return strings.Join(lines, "\n")
}

// Differential is the ranked list of candidate diagnoses.
type Differential []string

// LabStatus is the state of a lab order.
type LabStatus string

// Lab statuses
const (
	LabPending LabStatus = "Pending"
	LabOrdered LabStatus = "Ordered"
	LabReady   LabStatus = "Ready"
)

// LabOrder is a diagnostic test the learner can request for the patient.
type LabOrder struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Status LabStatus `json:"status"`
}

// DefaultLabOrders returns the order set of the appendicitis case.
func DefaultLabOrders() []LabOrder {
	return []LabOrder{
		{ID: "cbc", Name: "Complete Blood Count (CBC)", Status: LabPending},
		{ID: "us", Name: "Abdominal Ultrasound", Status: LabOrdered},
		{ID: "ua", Name: "Urinalysis", Status: LabReady},
		{ID: "crp", Name: "C-Reactive Protein (CRP)", Status: LabOrdered},
	}
}

// Vitals are the simulated patient's vital signs.
type Vitals struct {
	TemperatureC  float64 `json:"temperature_c"`
	HeartRate     int     `json:"heart_rate"`
	BloodPressure string  `json:"blood_pressure"`
	Pain          int     `json:"pain"`
}

// ClinicalCase is the state of one simulated patient encounter.
type ClinicalCase struct {
	Transcript   Transcript        `json:"transcript"`
	Differential Differential      `json:"differential"`
	Labs         []LabOrder        `json:"labs"`
	LabResults   map[string]string `json:"lab_results"`
	Vitals       Vitals            `json:"vitals"`
	Feedback     string            `json:"feedback,omitempty"`
}

// NewClinicalCase opens the appendicitis case with the patient's first complaint.
func NewClinicalCase(lang Language) ClinicalCase {
	return ClinicalCase{
		Transcript: Transcript{{
			Role: RolePatient,
			Text: lang.Pick(
				"Doctor, my stomach hurts so much... it started around the belly button but now it's moved to the right side.",
				"Bác sĩ ơi, bụng tôi đau quá... lúc đầu đau quanh rốn nhưng giờ nó chuyển sang bên phải rồi.",
			),
		}},
		Differential: Differential{"Appendicitis", "Gastroenteritis", "UTI"},
		Labs:         DefaultLabOrders(),
		LabResults:   map[string]string{},
		Vitals:       Vitals{TemperatureC: 38.5, HeartRate: 110, BloodPressure: "135/85", Pain: 7},
	}
}

// Lab returns the lab order with the given ID.
func (c *ClinicalCase) Lab(id string) (LabOrder, error) {
	for _, lab := range c.Labs {
		if lab.ID == id {
			return lab, nil
		}
	}
	return LabOrder{}, fmt.Errorf("%w: %q", ErrLabNotFound, id)
}

// CompleteLab stores the result of a lab and marks it ready.
func (c *ClinicalCase) CompleteLab(id, result string) error {
	for i := range c.Labs {
		if c.Labs[i].ID == id {
			c.Labs[i].Status = LabReady
			if c.LabResults == nil {
				c.LabResults = map[string]string{}
			}
			c.LabResults[id] = result
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrLabNotFound, id)
}

// Clone returns a deep copy.
func (c ClinicalCase) Clone() ClinicalCase {
	c.Transcript = slices.Clone(c.Transcript)
	c.Differential = slices.Clone(c.Differential)
	c.Labs = slices.Clone(c.Labs)
	c.LabResults = maps.Clone(c.LabResults)
	return c
}
