package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemID_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want ItemID
		out  string
	}{
		{`7`, "7", `7`},
		{`-3.5`, "-3.5", `-3.5`},
		{`"yx-1"`, "yx-1", `"yx-1"`},
		{`"007"`, "007", `"007"`},
		{`null`, "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ItemID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)

			data, err := json.Marshal(id)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(data))
		})
	}
}

func TestItemID_RejectsComposites(t *testing.T) {
	for _, in := range []string{`{}`, `[1]`, `true`} {
		var id ItemID
		assert.Error(t, json.Unmarshal([]byte(in), &id), in)
	}
}
