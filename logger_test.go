package inpaint

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestSetLogger(t *testing.T) {
	orig := *Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	Logger().Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)

	SetLogger(zerolog.Nop())
	buf.Reset()
	Logger().Info().Msg("hello")
	assert.Empty(t, buf.String())
}
