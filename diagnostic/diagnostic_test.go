package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStringCoversDefinedValues(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{UndefinedValue, "UndefinedValue"},
		{RecursiveImport, "RecursiveImport"},
		{InvalidCacheName, "InvalidCacheName"},
		{Event(999), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.e.String())
	}
}

func TestSinkFansOutToEveryListener(t *testing.T) {
	a := &Recorder{}
	b := &Recorder{}
	sink := NewSink(a, b)

	sink.Report(Trace{Event: UnknownImport, Target: "numpy"})

	assert.True(t, a.HasEvent(UnknownImport))
	assert.True(t, b.HasEvent(UnknownImport))
}

func TestSinkWithNoListenersDropsSilently(t *testing.T) {
	sink := NewSink()
	assert.NotPanics(t, func() {
		sink.Report(Trace{Event: Scrape})
	})
}

func TestAttachAddsListenerAfterConstruction(t *testing.T) {
	sink := NewSink()
	rec := &Recorder{}
	sink.Attach(rec)

	sink.Report(Trace{Event: ImportTimeout})
	assert.True(t, rec.HasEvent(ImportTimeout))
}
