package domain

// Message is one inbound SMS extracted from an inbox page.
// Identity is the (Text, Time) pair; see DedupKey.
type Message struct {
	ID   string  `json:"id"`
	From string  `json:"from"`
	Text string  `json:"text"`
	OTP  *string `json:"otp"`
	Time string  `json:"time"` // ISO-8601, UTC, millisecond precision
}

// DedupKey is the canonical identity of a message within one result.
func (m Message) DedupKey() string {
	return m.Text + "|" + m.Time
}

// Layout names the extraction strategy that produced a candidate.
type Layout string

const (
	LayoutDefinitionList Layout = "definition_list"
	LayoutLegacy         Layout = "legacy"
)

// RawMessage is an unclassified candidate produced by a parser strategy.
// Fields hold source text as found in the document.
type RawMessage struct {
	From   string
	Text   string
	Time   string // empty when the document carried no timestamp
	Layout Layout
}
