package transport

// LookupFormatRequest is bound from the query string of a format lookup.
type LookupFormatRequest struct {
	Code string `form:"code" validate:"required,callingcode"`
}

// FormatInputRequest carries the current value of a national-number input box.
type FormatInputRequest struct {
	Value       string `json:"value" validate:"max=64"`
	CallingCode string `json:"callingCode" validate:"required,callingcode"`
}

// FormatInputResponse is the masked input value.
type FormatInputResponse struct {
	Value string `json:"value"`
}

// FormatDisplayRequest carries a stored phone value.
type FormatDisplayRequest struct {
	Phone string `json:"phone" validate:"max=64"`
}

// FormatDisplayResponse is the human-readable rendering of a stored phone.
type FormatDisplayResponse struct {
	Display string `json:"display"`
}

// ComposeRequest joins a calling code and a national number into stored form.
type ComposeRequest struct {
	CallingCode string `json:"callingCode" validate:"required,callingcode"`
	Number      string `json:"number" validate:"required,max=64"`
}

// ComposeResponse returns both the stored and display form of a phone.
type ComposeResponse struct {
	Stored  string `json:"stored"`
	Display string `json:"display"`
}

// ValidateRequest carries a phone to check against libphonenumber metadata.
type ValidateRequest struct {
	Phone string `json:"phone" validate:"required,max=64"`
}

// ValidateResponse reports the libphonenumber verdict.
type ValidateResponse struct {
	Valid       bool   `json:"valid"`
	E164        string `json:"e164,omitempty"`
	Region      string `json:"region,omitempty"`
	CallingCode string `json:"callingCode,omitempty"`
}

// FormatResponse describes one country format.
type FormatResponse struct {
	Code        string `json:"code"`
	Region      string `json:"region,omitempty"`
	Pattern     string `json:"pattern"`
	Placeholder string `json:"placeholder"`
	MaxDigits   int    `json:"maxDigits"`
	Known       bool   `json:"known"`
}

// FormatListResponse wraps the full format table.
type FormatListResponse struct {
	Items []FormatResponse `json:"items"`
	Total int              `json:"total"`
}
