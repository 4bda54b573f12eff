package domain

// Cookie mirrors one entry of a browser cookie export (Cookie-Editor format).
// Optional fields are left zero when absent from the export.
type Cookie struct {
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Domain         string   `json:"domain,omitempty"`
	Path           string   `json:"path,omitempty"`
	ExpirationDate *float64 `json:"expirationDate,omitempty"` // seconds since epoch
	Secure         bool     `json:"secure,omitempty"`
	HTTPOnly       bool     `json:"httpOnly,omitempty"`
	SameSite       string   `json:"sameSite,omitempty"`
}
