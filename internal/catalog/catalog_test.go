package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	def, ok := Lookup("adpTest")
	require.True(t, ok)
	assert.Equal(t, "ADP Test", def.Name)
	assert.Equal(t, []string{"Test Results", "adpTest"}, def.ResponsePath)
	assert.True(t, def.RequiresPlanYear)

	_, ok = Lookup("notARealTest")
	assert.False(t, ok)
}

func TestDefinitionsAreComplete(t *testing.T) {
	defs := All()
	require.NotEmpty(t, defs)

	for _, def := range defs {
		t.Run(def.Key, func(t *testing.T) {
			assert.NotEmpty(t, def.Name)
			assert.NotEmpty(t, def.Criterion)
			assert.NotEmpty(t, def.ResponsePath)
			assert.NotEmpty(t, def.Fields)
			assert.NotEmpty(t, def.CorrectiveActions,
				"every test needs corrective copy for the failure path")
			assert.NotEmpty(t, def.Consequences)
			assert.NotEmpty(t, def.TemplateHeaders)

			// Every definition renders the outcome field.
			var hasOutcome bool
			for _, field := range def.Fields {
				if field.Key == "Test Result" {
					hasOutcome = true
				}
			}
			assert.True(t, hasOutcome)
		})
	}
}

func TestAllIsSorted(t *testing.T) {
	defs := All()
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Key, defs[i].Key)
	}
}

func TestLegacyTestsSkipPlanYear(t *testing.T) {
	def, ok := Lookup("simpleCafeteriaPlanTest")
	require.True(t, ok)
	assert.False(t, def.RequiresPlanYear)
}

func TestValidPlanYear(t *testing.T) {
	assert.True(t, ValidPlanYear(2010))
	assert.True(t, ValidPlanYear(2026))
	assert.True(t, ValidPlanYear(2051))
	assert.False(t, ValidPlanYear(2009))
	assert.False(t, ValidPlanYear(2052))
	assert.False(t, ValidPlanYear(0))
}
