package linkverify

// BrokenLink is one failed reference.
type BrokenLink struct {
	Locale string   `json:"locale"`
	Slug   []string `json:"slug"`
	// Source is the content file the link was written in.
	Source     string `json:"source"`
	URL        string `json:"url"`
	IsInternal bool   `json:"isInternal"`
	// Status is the HTTP status of an external check, 0 otherwise.
	Status int    `json:"status,omitempty"`
	Reason string `json:"reason"`
}

// Broken-link reasons.
const (
	ReasonUnknownPage    = "unknown page"
	ReasonMissingAnchor  = "missing anchor"
	ReasonExternalFailed = "external request failed"
)
