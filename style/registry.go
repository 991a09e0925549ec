// Package style enumerates the paragraph styles a document block can carry.
package style

// ID names a paragraph style.
type ID string

const (
	Default   ID = "default"
	Highlight ID = "highlight"
	Quote     ID = "quote"
	Info      ID = "info"
	Warning   ID = "warning"
	Success   ID = "success"
	Code      ID = "code"
)

// ClassPrefix is prepended to a style ID to form its presentation class.
const ClassPrefix = "paragraph-"

// Entry is the display metadata for one style.
type Entry struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// registry is in declaration order.
var registry = []Entry{
	{Default, "Default", "Regular paragraph"},
	{Highlight, "Highlight", "Highlighted paragraph with accent border"},
	{Quote, "Quote", "Styled quote paragraph"},
	{Info, "Info", "Information callout"},
	{Warning, "Warning", "Warning callout"},
	{Success, "Success", "Success callout"},
	{Code, "Code Block", "Code-style paragraph"},
}

// All returns every registered style in declaration order.
// The returned slice is a copy and may be modified by the caller.
func All() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the metadata for s, if s is a registered style.
func Lookup(s string) (Entry, bool) {
	for _, e := range registry {
		if string(e.ID) == s {
			return e, true
		}
	}
	return Entry{}, false
}

// Valid reports whether s is a registered style.
func Valid(s string) bool {
	_, ok := Lookup(s)
	return ok
}

// Normalize maps s to its style ID. Unknown values become Default.
func Normalize(s string) ID {
	if e, ok := Lookup(s); ok {
		return e.ID
	}
	return Default
}

// IsDefault reports whether id is the default style.
func (id ID) IsDefault() bool { return id == Default }

// Class returns the presentation class token for id, e.g. "paragraph-info".
func (id ID) Class() string { return ClassPrefix + string(id) }
