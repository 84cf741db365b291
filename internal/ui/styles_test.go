package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderVerbatim(t *testing.T) {
	styles := NoColorStyles()

	for _, s := range []string{"●", "○", "q to quit"} {
		assert.Equal(t, s, styles.Header.Render(s))
		assert.Equal(t, s, styles.Pending.Render(s))
		assert.Equal(t, s, styles.Label.Render(s))
	}
}

func TestDefaultStyles_KeepText(t *testing.T) {
	// Given: default styles
	styles := DefaultStyles()

	// When: rendering stage indicators
	active := styles.Active.Render("●")
	pending := styles.Pending.Render("○")

	// Then: the glyphs survive styling
	assert.Contains(t, active, "●")
	assert.Contains(t, pending, "○")
	assert.Contains(t, styles.Header.Render("Test"), "Test")
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "test", GetStyles(true).Success.Render("test"))
	assert.Contains(t, GetStyles(false).Success.Render("test"), "test")
}
