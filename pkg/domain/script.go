package domain

import "fmt"

// Prompt keys of the default script. They are also the JSON keys of the request body.
const (
	KeyLevel     = "level"
	KeyStyle     = "style"
	KeyStiffness = "stiffness"
	KeyBudget    = "budget"
)

// PromptSpec is one question of the script.
type PromptSpec struct {
	Key  string `json:"key" yaml:"key" mapstructure:"key"`
	Text string `json:"text" yaml:"text" mapstructure:"text"`

	// Numeric prompts coerce the answer to a number instead of storing the text.
	Numeric bool `json:"numeric,omitempty" yaml:"numeric,omitempty" mapstructure:"numeric"`
}

// Script is the ordered list of prompts. Order defines the question sequence.
type Script []PromptSpec

// DefaultScript returns the four racket questions.
func DefaultScript() Script {
	return Script{
		{Key: KeyLevel, Text: "1️⃣ 你的水平是？（初学 / 进阶 / 专业）"},
		{Key: KeyStyle, Text: "2️⃣ 你偏好哪种打法？（进攻型 / 控制型 / 全能型）"},
		{Key: KeyStiffness, Text: "3️⃣ 你喜欢拍框硬度？（软 / 中硬 / 硬）"},
		{Key: KeyBudget, Text: "4️⃣ 你的预算大概是多少？（请输入数字，例如 500）", Numeric: true},
	}
}

// Keys returns the prompt keys in order.
func (s Script) Keys() []string {
	keys := make([]string, len(s))
	for i, p := range s {
		keys[i] = p.Key
	}
	return keys
}

// Validate checks that the script is usable: at least one prompt, unique non-empty keys
// and non-empty texts.
func (s Script) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no prompts", ErrInvalidScript)
	}
	seen := make(map[string]struct{}, len(s))
	for i, p := range s {
		if p.Key == "" {
			return fmt.Errorf("%w: prompt %d has empty key", ErrInvalidScript, i)
		}
		if p.Text == "" {
			return fmt.Errorf("%w: prompt %q has empty text", ErrInvalidScript, p.Key)
		}
		if _, dup := seen[p.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidScript, p.Key)
		}
		seen[p.Key] = struct{}{}
	}
	return nil
}
