package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultScript(t *testing.T) {
	s := DefaultScript()
	assert.NoError(t, s.Validate())
	assert.Equal(t, []string{KeyLevel, KeyStyle, KeyStiffness, KeyBudget}, s.Keys())
	assert.True(t, s[3].Numeric)
}

func TestScript_Validate(t *testing.T) {
	tests := []struct {
		name   string
		script Script
	}{
		{"empty", Script{}},
		{"empty key", Script{{Key: "", Text: "q"}}},
		{"empty text", Script{{Key: "a", Text: ""}}},
		{"duplicate", Script{{Key: "a", Text: "q"}, {Key: "a", Text: "q2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.script.Validate(), ErrInvalidScript)
		})
	}
}
