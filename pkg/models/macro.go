package models

// Macro response status of CloudFormation
const (
	MacroStatusSuccess = "success"
	MacroStatusFailed  = "failed"
)

// MacroRequest is an event from CloudFormation macro invocation
type MacroRequest struct {
	RequestID string                 `json:"requestId"`
	Region    string                 `json:"region,omitempty"`
	AccountID string                 `json:"accountId,omitempty"`
	Params    map[string]interface{} `json:"params"`
}

// MacroResponse is returned to CloudFormation
type MacroResponse struct {
	RequestID    string `json:"requestId"`
	Status       string `json:"status"`
	Fragment     string `json:"fragment,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
