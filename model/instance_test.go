package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceKindAndName(t *testing.T) {
	mod := NewSourceModule("pkg")
	cls := NewClass("Widget", mod)
	inst := NewInstance(cls)

	assert.Equal(t, KindInstance, inst.Kind())
	assert.Equal(t, "Widget", inst.Name())
	assert.Same(t, cls, inst.Class)
}
