package pkg

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCombinedWriter_Write(t *testing.T) {
	stdout := &strings.Builder{}
	logFile := &strings.Builder{}
	logFile.WriteString("previous run\n")

	cw := NewCombinedWriter(stdout, logFile)
	require.Len(t, cw.Writers, 2)

	lines := []string{
		"level=info msg=\"server listening on 0.0.0.0:9000\"\n",
		"level=debug msg=\"progression cache namespace: mem-x\"\n",
	}
	for _, line := range lines {
		n, err := cw.Write([]byte(line))
		require.NoError(t, err)
		assert.Equal(t, 2*len(line), n)
	}

	assert.Equal(t, strings.Join(lines, ""), stdout.String())
	assert.Equal(t, "previous run\n"+strings.Join(lines, ""), logFile.String())
}

func TestCombinedWriter_WriteErrors(t *testing.T) {
	diskFull := errors.New("no space left on device")
	closedPipe := errors.New("broken pipe")
	stdout := &strings.Builder{}

	cw := NewCombinedWriter(failingWriter{diskFull}, stdout, failingWriter{closedPipe})

	line := "level=error msg=\"get store instance id\"\n"
	n, err := cw.Write([]byte(line))

	// the healthy writer still gets the line
	assert.Equal(t, len(line), n)
	assert.Equal(t, line, stdout.String())

	require.Error(t, err)
	assert.Equal(t, []error{diskFull, closedPipe}, multierr.Errors(err))
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}
