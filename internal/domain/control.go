package domain

// Control is one compliance requirement of the catalog.
type Control struct {
	ID                   uint
	RequirementID        string
	Domain               string
	Title                string
	Statement            string
	Discussion           *string
	FurtherDiscussion    *string
	KeyReferences        *string
	AssessmentObjectives *string
	AssessmentMethods    *string
	C3PAOFinding         *string
	SelfImplStatus       *string
}

const UnknownDomain = "Unknown"

// PlaceholderControl is the row created when an import names a requirement
// the catalog does not know.
func PlaceholderControl(requirementID string) Control {
	return Control{
		RequirementID: requirementID,
		Domain:        UnknownDomain,
		Title:         requirementID,
		Statement:     "",
	}
}

type ControlFilter struct {
	Text   string
	Domain string
}

// ControlUpdate carries the two tracking fields. A nil field was not sent
// and leaves the stored value alone; a non-nil empty string overwrites it.
type ControlUpdate struct {
	C3PAOFinding   *string
	SelfImplStatus *string
}

func (u ControlUpdate) Apply(c *Control) {
	if u.C3PAOFinding != nil {
		v := *u.C3PAOFinding
		c.C3PAOFinding = &v
	}
	if u.SelfImplStatus != nil {
		v := *u.SelfImplStatus
		c.SelfImplStatus = &v
	}
}

func (u ControlUpdate) Empty() bool {
	return u.C3PAOFinding == nil && u.SelfImplStatus == nil
}
