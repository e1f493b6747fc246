package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blacktop/go-corehost/ipc"
	"github.com/pingcap/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(json.NewEncoder(&buf), ipc.NewLogMessage(ipc.LevelInformation, "hello"))
	assert.Contains(t, buf.String(), `"Message":"hello"`)
}

func TestPrintJSONWriteFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := log.ReplaceGlobals(zap.New(core), &log.ZapProperties{})
	t.Cleanup(restore)

	printJSON(json.NewEncoder(failingWriter{}), ipc.NewLogMessage(ipc.LevelError, "lost"))

	entries := logs.FilterMessage("failed to print record").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, ipc.LogMessageType, entries[0].ContextMap()["type"])
		assert.Equal(t, "stdout closed", entries[0].ContextMap()["error"])
	}
}
