package provider

import "testing"

func TestMessageConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      Message
		wantRole MessageRole
	}{
		{"system", SystemMessage("rules"), MessageRoleSystem},
		{"user", UserMessage("hi"), MessageRoleUser},
		{"assistant", AssistantMessage("hello"), MessageRoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.msg.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", tt.msg.Role, tt.wantRole)
			}
			if tt.msg.Content == "" {
				t.Error("content should not be empty")
			}
		})
	}
}
