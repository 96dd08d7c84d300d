// Package diagnostic carries the stable trace-event vocabulary every other
// package emits instead of returning an error for a recoverable condition
// (§6 "Diagnostics": lookup failures, unresolved imports, and malformed
// annotations are never fatal). Events flow through a Reporter to a Sink,
// the same fan-out shape the teacher uses for its own finding reporters
// (output.Logger plus formatter adapters).
package diagnostic

import "github.com/pysymtab/engine/model"

// Event is the closed set of trace-event names. Every event a component can
// emit is named here so callers never have to string-match a free-form
// message.
type Event int

const (
	UndefinedValue Event = iota
	UndefinedImport
	UnknownImport
	UnknownMember
	UnknownCallable
	UnknownIndex
	ImportNotFound
	ImportTimeout
	RecursiveImport
	RetryImport
	Scrape
	ScrapeTimeout
	InvalidateCachedModule
	WriteCachedModule
	Import
	ImportScraped
	ImportBuiltins
	ImportTypeStub
	SearchPaths
	FindModule
	GetCurrentSearchPaths
	InvalidDatabasePath
	InvalidCacheName
	MROCycle
)

var eventNames = map[Event]string{
	UndefinedValue:         "UndefinedValue",
	UndefinedImport:        "UndefinedImport",
	UnknownImport:          "UnknownImport",
	UnknownMember:          "UnknownMember",
	UnknownCallable:        "UnknownCallable",
	UnknownIndex:           "UnknownIndex",
	ImportNotFound:         "ImportNotFound",
	ImportTimeout:          "ImportTimeout",
	RecursiveImport:        "RecursiveImport",
	RetryImport:            "RetryImport",
	Scrape:                 "Scrape",
	ScrapeTimeout:          "ScrapeTimeout",
	InvalidateCachedModule: "InvalidateCachedModule",
	WriteCachedModule:      "WriteCachedModule",
	Import:                 "Import",
	ImportScraped:          "ImportScraped",
	ImportBuiltins:         "ImportBuiltins",
	ImportTypeStub:         "ImportTypeStub",
	SearchPaths:            "SearchPaths",
	FindModule:             "FindModule",
	GetCurrentSearchPaths:  "GetCurrentSearchPaths",
	InvalidDatabasePath:    "InvalidDatabasePath",
	InvalidCacheName:       "InvalidCacheName",
	MROCycle:               "MROCycle",
}

func (e Event) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return "Unknown"
}

// Trace is one emitted event: its name, a human-readable detail, the
// location it concerns (if any), and the fully qualified name of the
// module/class/import target involved.
type Trace struct {
	Event    Event
	Detail   string
	Location model.Location
	Target   string
}

// Reporter is implemented by anything that can receive trace events —
// package modcache, package walker and the cmd loader take a Reporter instead
// of talking to a concrete sink directly, so tests can substitute a
// recording Reporter and the CLI can substitute a logging one.
type Reporter interface {
	Report(t Trace)
}

// Sink fans a Trace out to a set of listeners. The zero value has no
// listeners and silently drops everything, which is the correct default for
// library callers that do not care about diagnostics.
type Sink struct {
	listeners []Reporter
}

// NewSink creates a Sink with an initial set of listeners attached.
func NewSink(listeners ...Reporter) *Sink {
	return &Sink{listeners: listeners}
}

// Attach adds one more listener to the sink.
func (s *Sink) Attach(r Reporter) {
	s.listeners = append(s.listeners, r)
}

func (s *Sink) Report(t Trace) {
	for _, l := range s.listeners {
		l.Report(t)
	}
}

// Recorder is a Reporter that keeps every event it receives, in order — the
// sink tests install in place of the CLI's logging sink.
type Recorder struct {
	Traces []Trace
}

func (r *Recorder) Report(t Trace) {
	r.Traces = append(r.Traces, t)
}

// HasEvent reports whether the recorder captured at least one trace of the
// given event kind.
func (r *Recorder) HasEvent(e Event) bool {
	for _, t := range r.Traces {
		if t.Event == e {
			return true
		}
	}
	return false
}
