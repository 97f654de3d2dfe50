package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInboundSend(t *testing.T) {
	f, err := parseInbound([]byte(`{"action":"chat.send","recipient_id":7,"content":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, actionSend, f.Action)
	require.EqualValues(t, 7, f.RecipientID)
	require.Equal(t, "hi", f.Content)
}

func TestParseInboundTyping(t *testing.T) {
	f, err := parseInbound([]byte(`{"action":"chat.typing","recipient_id":7}`))
	require.NoError(t, err)
	require.Equal(t, actionTyping, f.Action)
	require.EqualValues(t, 7, f.RecipientID)
	require.Empty(t, f.Content)
}

func TestParseInboundErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"action":`},
		{"missing action", `{"recipient_id":7}`},
		{"action not string", `{"action":1,"recipient_id":7}`},
		{"missing recipient", `{"action":"chat.send","content":"hi"}`},
		{"recipient not integer", `{"action":"chat.send","recipient_id":"7","content":"hi"}`},
		{"send without content", `{"action":"chat.send","recipient_id":7}`},
		{"content not string", `{"action":"chat.send","recipient_id":7,"content":9}`},
		{"unknown action", `{"action":"chat.dance","recipient_id":7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseInbound([]byte(tc.raw))
			require.Error(t, err)
		})
	}
}
