package model

// Location identifies a span of Python source: an absolute file path (or an
// opaque document URI for unsaved editor buffers) plus a start/end line:col
// pair. Line and column are 1-indexed to match editor conventions.
type Location struct {
	File      string
	URI       string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// IsZero reports whether the location carries no position information, as
// happens for synthesized members (builtins, scraped names) that have no
// source span.
func (l Location) IsZero() bool {
	return l.File == "" && l.URI == "" && l.StartLine == 0 && l.EndLine == 0
}
