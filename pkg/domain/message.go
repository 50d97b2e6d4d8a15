package domain

// Speaker tags who produced a transcript message.
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerSystem Speaker = "system"
)

// Message is one line of the chat transcript. Messages are never mutated once appended.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// UserMessage builds a user-speaker message.
func UserMessage(text string) Message {
	return Message{Speaker: SpeakerUser, Text: text}
}

// SystemMessage builds a system-speaker message.
func SystemMessage(text string) Message {
	return Message{Speaker: SpeakerSystem, Text: text}
}

// Messages holds the fixed system texts used by the conversation.
type Messages struct {
	Greeting string `json:"greeting" yaml:"greeting" mapstructure:"greeting"`
	Waiting  string `json:"waiting" yaml:"waiting" mapstructure:"waiting"`
	NoMatch  string `json:"no_match" yaml:"no_match" mapstructure:"no_match"`
	Header   string `json:"header" yaml:"header" mapstructure:"header"`
	Failure  string `json:"failure" yaml:"failure" mapstructure:"failure"`
}

// DefaultMessages returns the stock chat texts.
func DefaultMessages() Messages {
	return Messages{
		Greeting: "欢迎使用羽毛球拍推荐 🤖，请回答以下问题~",
		Waiting:  "正在为你推荐，请稍候…",
		NoMatch:  "抱歉，未找到符合条件的球拍。",
		Header:   "为你找到了以下推荐：",
		Failure:  "网络出错，请稍后重试。",
	}
}

// WithDefaults fills empty fields from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	if m.Greeting == "" {
		m.Greeting = d.Greeting
	}
	if m.Waiting == "" {
		m.Waiting = d.Waiting
	}
	if m.NoMatch == "" {
		m.NoMatch = d.NoMatch
	}
	if m.Header == "" {
		m.Header = d.Header
	}
	if m.Failure == "" {
		m.Failure = d.Failure
	}
	return m
}
