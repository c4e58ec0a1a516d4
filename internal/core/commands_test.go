package core

import (
	"testing"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	req := require.New(t)

	cmd, err := DecodeCommand([]byte(`{"type":"send_message","chatId":"c1","content":"hello"}`))
	req.NoError(err)
	req.Equal(CmdSendMessage, cmd.Type)

	var p SendMessage
	req.Nil(cmd.Bind(&p))
	req.Equal(domain.ChatID("c1"), p.ChatID)
	req.Equal("hello", p.Content)
}

func TestDecodeCommand_Malformed(t *testing.T) {
	req := require.New(t)

	_, err := DecodeCommand([]byte(`not json`))
	req.Error(err)

	_, err = DecodeCommand([]byte(`{"chatId":"c1"}`))
	req.Error(err)
}

func TestCommand_Bind_Validation(t *testing.T) {
	req := require.New(t)

	cmd, err := DecodeCommand([]byte(`{"type":"initiate_call","to":"y","callType":"hologram","offer":{"sdp":"v=0"}}`))
	req.NoError(err)

	var p InitiateCall
	de := cmd.Bind(&p)
	req.NotNil(de)
	req.Equal(domain.KindValidation, de.Kind)
	req.Equal(domain.CodeInvalidPayload, de.Code)
}

func TestCommand_Bind_EmbeddedRef(t *testing.T) {
	req := require.New(t)

	cmd, err := DecodeCommand([]byte(`{"type":"add_reaction","messageId":"m1","chatId":"c1","emoji":"👍"}`))
	req.NoError(err)

	var p AddReaction
	req.Nil(cmd.Bind(&p))
	req.Equal(domain.MessageID("m1"), p.MessageID)
	req.Equal("👍", p.Emoji)

	cmd, err = DecodeCommand([]byte(`{"type":"add_reaction","chatId":"c1","emoji":"👍"}`))
	req.NoError(err)
	req.NotNil(cmd.Bind(&AddReaction{}))
}
