package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLogMessage(t *testing.T) {
	b, err := Encode(NewLogMessage(LevelError, `InvalidConfigFile: "app" <bad>`))
	require.NoError(t, err)
	assert.Equal(t,
		`{"$type":"CoreHook.IPC.Messages.LogMessage","Level":4,"Source":"NativeHost","Message":"InvalidConfigFile: \"app\" <bad>"}`+"\r\n",
		string(b))
}

func TestLevelRoundTrip(t *testing.T) {
	for l := LevelTrace; l <= LevelNone; l++ {
		t.Run(l.String(), func(t *testing.T) {
			b, err := Encode(NewLogMessage(l, "InvalidConfigFile: ..."))
			require.NoError(t, err)

			m, err := Decode(b)
			require.NoError(t, err)
			lm, ok := m.(*LogMessage)
			require.True(t, ok)
			assert.Equal(t, l, lm.Level)
			assert.Equal(t, Source, lm.Source)
			assert.Equal(t, "InvalidConfigFile: ...", lm.Message)
		})
	}
}

func TestLevelValues(t *testing.T) {
	assert.EqualValues(t, 2, LevelInformation)
	assert.EqualValues(t, 4, LevelError)
	assert.Equal(t, "Level(9)", Level(9).String())
}

func TestDecodeInjectionComplete(t *testing.T) {
	m, err := Decode([]byte(`{"$type":"CoreHook.IPC.Messages.InjectionCompleteMessage","ProcessId":1234,"Completed":true}`))
	require.NoError(t, err)
	ic, ok := m.(*InjectionCompleteMessage)
	require.True(t, ok)
	assert.Equal(t, 1234, ic.ProcessID)
	assert.True(t, ic.Completed)
	assert.Equal(t, InjectionCompleteMessageType, ic.MessageType())
}

func TestDecodeUnknownType(t *testing.T) {
	raw := `{"$type":"CoreHook.IPC.Messages.Other","X":1}`
	m, err := Decode([]byte(raw + "\r\n"))
	require.NoError(t, err)
	u, ok := m.(*UnknownMessage)
	require.True(t, ok)
	assert.Equal(t, "CoreHook.IPC.Messages.Other", u.MessageType())
	assert.Equal(t, raw, string(u.Raw))
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{"", "not json", "[1,2]", `{"$type":"CoreHook.IPC.Messages.LogMessage","Level":"high"}`} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedRecord, in)
	}
}
