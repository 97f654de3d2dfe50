package chat

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// Inbound actions clients may address.
const (
	actionSend   = "chat.send"
	actionTyping = "chat.typing"
)

type inboundFrame struct {
	Action      string
	RecipientID int64
	Content     string
}

var framePool fastjson.ParserPool

// parseInbound validates and decodes one raw websocket frame.
// Content is only required for chat.send; emptiness is the router's call.
func parseInbound(data []byte) (inboundFrame, error) {
	parser := framePool.Get()
	defer framePool.Put(parser)

	v, err := parser.ParseBytes(data)
	if err != nil {
		return inboundFrame{}, errors.New("malformed JSON")
	}

	if !v.Exists("action") {
		return inboundFrame{}, errors.New(`missing field "action"`)
	}
	actionValue := v.Get("action")
	if actionValue.Type() != fastjson.TypeString {
		return inboundFrame{}, errors.New(`field "action" must be a string`)
	}
	action := string(actionValue.GetStringBytes())

	if !v.Exists("recipient_id") {
		return inboundFrame{}, errors.New(`missing field "recipient_id"`)
	}
	recipientID, err := v.Get("recipient_id").Int64()
	if err != nil {
		return inboundFrame{}, errors.New(`field "recipient_id" must be a 64-bit integer value`)
	}

	f := inboundFrame{Action: action, RecipientID: recipientID}

	switch action {
	case actionSend:
		if !v.Exists("content") {
			return inboundFrame{}, errors.New(`missing field "content"`)
		}
		contentValue := v.Get("content")
		if contentValue.Type() != fastjson.TypeString {
			return inboundFrame{}, errors.New(`field "content" must be a string`)
		}
		f.Content = string(contentValue.GetStringBytes())
	case actionTyping:
		// no payload beyond the recipient
	default:
		return inboundFrame{}, fmt.Errorf("unknown action %q", action)
	}

	return f, nil
}
