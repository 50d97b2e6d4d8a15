package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ItemID identifies a recommendation item. The service may send it as a
// JSON number or a JSON string; both decode to the same textual form.
type ItemID string

// MarshalJSON emits a JSON number when the id is a valid number literal
// and a JSON string otherwise.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id != "" && json.Valid([]byte(id)) && isNumberLiteral(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a string, a number or null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %s", data)
	}
	*id = ItemID(n)
	return nil
}

func isNumberLiteral(s string) bool {
	c := s[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// RecommendationItem is one product returned by the recommendation service.
// The engine only displays it.
type RecommendationItem struct {
	ID        ItemID  `json:"id" yaml:"id" jsonschema:"oneof_type=string;integer"`
	Brand     string  `json:"brand" yaml:"brand"`
	Model     string  `json:"model" yaml:"model"`
	Level     string  `json:"level" yaml:"level"`
	Style     string  `json:"style" yaml:"style"`
	Stiffness string  `json:"stiffness" yaml:"stiffness"`
	Price     float64 `json:"price" yaml:"price"`
	ImageRef  string  `json:"imageRef" yaml:"imageRef"`
}

// RecommendResponse is the body returned by the recommendation service.
type RecommendResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
	Explanation     string               `json:"explanation"`
}
