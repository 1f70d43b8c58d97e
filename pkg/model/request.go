package model

// Action identifies the operation requested against a collection.
type Action string

const (
	ActionRead    Action = "read"
	ActionReadAll Action = "readAll"
	ActionWrite   Action = "write"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
)

// Validate checks if the action is one of the supported operations.
func (a Action) Validate() error {
	switch a {
	case ActionRead, ActionReadAll, ActionWrite, ActionUpdate, ActionDelete:
		return nil
	default:
		return ErrInvalidAction
	}
}

// Request is the inbound request body: an action against a named
// collection with an action-dependent payload.
type Request struct {
	Action     Action  `json:"action"`
	Collection string  `json:"collection"`
	Payload    Payload `json:"payload"`
}

// Payload carries the action-dependent parameters. Which fields are
// required depends on the action; unused fields are ignored.
type Payload struct {
	// Data is the field mapping to write. Required for write and update.
	Data map[string]string `json:"data"`

	// RowIndex addresses a row by its position in the current snapshot.
	// Required for update and delete. A pointer so that index 0 can be
	// told apart from an absent field.
	RowIndex *int `json:"rowIndex"`

	// Filter, Page and Limit apply to read only.
	Filter map[string]string `json:"filter"`
	Page   int               `json:"page"`
	Limit  int               `json:"limit"`

	// UserRole is the caller's declared role; the business rules apply
	// only to the contact-agent role.
	UserRole string `json:"userRole"`

	// ForceSave skips the daily contact deduplication check.
	ForceSave bool `json:"forceSave"`
}
