package prompter

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPasswordFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	_, err = w.WriteString("s3cret  \n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var out bytes.Buffer
	pw, err := PromptPassword(r, &out, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Equal(t, "Password: ", out.String())
}

func TestPromptPasswordWithoutNewline(t *testing.T) {
	pw, err := PromptPassword(strings.NewReader("last-line"), io.Discard, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "last-line", pw)
}

func TestPromptPasswordEmptyInput(t *testing.T) {
	_, err := PromptPassword(strings.NewReader(""), io.Discard, "Password: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false} {
		got, err := PromptConfirm(strings.NewReader(input), io.Discard, "Retract?")
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}
