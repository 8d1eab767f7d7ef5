package gateway

import (
	"reflect"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []openai.ChatCompletionMessage
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"single user line",
			"user: Hello",
			[]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "Hello"},
			},
		},
		{
			"alternating roles",
			"user: Hello\nai: Hi there\nuser: How are you?",
			[]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "Hello"},
				{Role: openai.ChatMessageRoleAssistant, Content: "Hi there"},
				{Role: openai.ChatMessageRoleUser, Content: "How are you?"},
			},
		},
		{
			"continuation lines join previous message",
			"user: first line\nsecond line\nai: answer",
			[]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "first line\nsecond line"},
				{Role: openai.ChatMessageRoleAssistant, Content: "answer"},
			},
		},
		{
			"leading unprefixed line starts a user message",
			"no prefix here\nai: answer",
			[]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "no prefix here"},
				{Role: openai.ChatMessageRoleAssistant, Content: "answer"},
			},
		},
		{
			"duplicated trailing user message",
			"user: Hello\nuser: Hello",
			[]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "Hello"},
				{Role: openai.ChatMessageRoleUser, Content: "Hello"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
