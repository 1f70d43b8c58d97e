package model

// ReadResult is the response of a paginated read: the page of row views
// and the pre-pagination total of matching rows.
type ReadResult struct {
	Data  []RowView `json:"data"`
	Total int       `json:"total"`
}

// WriteResult is the response of write, update and delete. A declined
// write is not an error: it is a successful response with Success=false
// and ConfirmationRequired=true, and the caller is expected to resubmit
// with forceSave to proceed.
type WriteResult struct {
	Success              bool   `json:"success"`
	ConfirmationRequired bool   `json:"confirmationRequired,omitempty"`
	Message              string `json:"message,omitempty"`
}

// Saved is the plain success result.
func Saved() *WriteResult {
	return &WriteResult{Success: true}
}

// Declined builds a soft-decline result carrying a human-readable reason.
func Declined(message string) *WriteResult {
	return &WriteResult{
		Success:              false,
		ConfirmationRequired: true,
		Message:              message,
	}
}
