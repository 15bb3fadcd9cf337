package domain

import "slices"

// Subjects of the competency map
const (
	SubjectGenetics   = "Genetics"
	SubjectPhysiology = "Physiology"
	SubjectCellBio    = "Cell Bio"
	SubjectEcology    = "Ecology"
	SubjectEvolution  = "Evolution"
	SubjectBiochem    = "Biochem"
)

// DefaultFullMark is the maximum score of every subject.
const DefaultFullMark = 150

// Competency is the learner's score in one subject.
type Competency struct {
	Subject  string `json:"subject"`
	Score    int    `json:"score"`
	FullMark int    `json:"full_mark"`
}

// CompetencyMap is the learner's radar chart, in display order.
type CompetencyMap []Competency

// DefaultCompetencyMap returns the starting scores of a new learner.
func DefaultCompetencyMap() CompetencyMap {
	return CompetencyMap{
		{Subject: SubjectGenetics, Score: 120, FullMark: DefaultFullMark},
		{Subject: SubjectPhysiology, Score: 98, FullMark: DefaultFullMark},
		{Subject: SubjectCellBio, Score: 86, FullMark: DefaultFullMark},
		{Subject: SubjectEcology, Score: 99, FullMark: DefaultFullMark},
		{Subject: SubjectEvolution, Score: 85, FullMark: DefaultFullMark},
		{Subject: SubjectBiochem, Score: 65, FullMark: DefaultFullMark},
	}
}

// Weakest returns the subject with the lowest score; ties go to the earlier
// subject. ok is false for an empty map.
func (m CompetencyMap) Weakest() (c Competency, ok bool) {
	if len(m) == 0 {
		return Competency{}, false
	}
	weakest := m[0]
	for _, item := range m[1:] {
		if item.Score < weakest.Score {
			weakest = item
		}
	}
	return weakest, true
}

// Improve raises subject by n points, capped at its full mark. It reports
// whether the subject exists.
func (m CompetencyMap) Improve(subject string, n int) bool {
	for i := range m {
		if m[i].Subject == subject {
			m[i].Score = min(m[i].FullMark, m[i].Score+n)
			return true
		}
	}
	return false
}

// Clone returns a copy that can be modified independently.
func (m CompetencyMap) Clone() CompetencyMap {
	return slices.Clone(m)
}
