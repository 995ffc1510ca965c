package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReplacesOnDuplicateName(t *testing.T) {
	first := &fakeService{name: "svc", enabled: true, score: 0.1}
	second := &fakeService{name: "svc", enabled: true, score: 0.9}

	rg := NewRegistry()
	rg.Register(first)
	rg.Register(second)

	require.Equal(t, 1, rg.Len())
	svc, err := rg.Get("svc")
	require.NoError(t, err)
	assert.Same(t, second, svc)
}

func TestRegistryEnabledFiltersDisabled(t *testing.T) {
	rg := NewRegistry()
	rg.Register(&fakeService{name: "on", enabled: true})
	rg.Register(&fakeService{name: "off", enabled: false})
	rg.Seal()

	enabled := rg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Descriptor().Name)
	assert.Len(t, rg.All(), 2)
}

func TestRegistryGetUnknown(t *testing.T) {
	rg := NewRegistry()
	_, err := rg.Get("missing")
	assert.Error(t, err)
}

func TestRegistryRegisterAfterSealPanics(t *testing.T) {
	rg := NewRegistry()
	rg.Seal()
	assert.Panics(t, func() {
		rg.Register(&fakeService{name: "late", enabled: true})
	})
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	rg := NewRegistry()
	rg.Register(&fakeService{name: "b", enabled: true})
	rg.Register(&fakeService{name: "a", enabled: true})
	rg.Register(&fakeService{name: "c", enabled: true})
	rg.Seal()

	var got []string
	for _, svc := range rg.All() {
		got = append(got, svc.Descriptor().Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Equal(t, []string{"a", "b", "c"}, rg.Names())
}
