// Package domain contains the learning and clinical-simulation entities of
// Bio-Nexus: application modes and languages, the simulated patient case
// (transcript, differential, lab orders), the learner's competency map and
// timed exams. Entities validate themselves and report failures with the
// sentinel errors in errors.go.
package domain
