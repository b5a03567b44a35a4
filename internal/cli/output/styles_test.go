package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, ColorEnabled("always", &buf))
	assert.False(t, ColorEnabled("never", &buf))
	assert.False(t, ColorEnabled("auto", &buf), "buffers are not terminals")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled("auto", &buf))
}

func TestNewStyles(t *testing.T) {
	var buf bytes.Buffer
	plain := NewStyles(&buf, false)
	assert.Equal(t, "oops", plain.Error.Render("oops"))

	colored := NewStyles(&buf, true)
	got := colored.Error.Render("oops")
	assert.Contains(t, got, "oops")
	assert.Contains(t, got, "\x1b[")
}
