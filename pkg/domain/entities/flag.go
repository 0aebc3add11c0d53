package entities

// IssueType identifies the kind of data-quality concern a flag records
type IssueType string

const (
	IssueMissingProductionRecord  IssueType = "missing_production_record"
	IssueInvalidShipDate          IssueType = "invalid_ship_date"
	IssueShipBeforeProduction     IssueType = "ship_before_production"
	IssueInsufficientDataExcluded IssueType = "insufficient_data_excluded"
	IssueConflictingDefectTypes   IssueType = "conflicting_defect_types"
)

// AllIssueTypes lists every issue in the order the engine can emit them for one lot
var AllIssueTypes = []IssueType{
	IssueMissingProductionRecord,
	IssueInvalidShipDate,
	IssueShipBeforeProduction,
	IssueInsufficientDataExcluded,
	IssueConflictingDefectTypes,
}

// Flag is an audit annotation for human review. It is not an error and,
// except for IssueInsufficientDataExcluded, does not remove the lot from output.
type Flag struct {
	Lot     LotKey    `json:"lot"`
	Issue   IssueType `json:"issue"`
	Details []string  `json:"details,omitempty"`
}

// Excludes reports whether the flagged lot was dropped from consolidated output
func (f Flag) Excludes() bool {
	return f.Issue == IssueInsufficientDataExcluded
}
