package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneAllowed(t *testing.T) {
	m := NewPhoneToolMap(nil)

	assert.True(t, m.IsPhoneAllowed("5544999999999"))
	assert.True(t, m.IsPhoneAllowed("unknown-number"))
	assert.False(t, m.IsPhoneAllowed(""))
	assert.False(t, m.IsPhoneAllowed("   "))
}

func TestToolForPhone(t *testing.T) {
	m := NewPhoneToolMap(map[string]string{
		"5544999999999": "transcription",
	})

	assert.Equal(t, "transcription", m.ToolForPhone("5544999999999"))
	assert.Equal(t, FallbackTool, m.ToolForPhone("5544888888888"))
	assert.Equal(t, "", m.ToolForPhone(""))
	assert.Equal(t, "", m.ToolForPhone("  "))
}

func TestAddAndRemove(t *testing.T) {
	m := NewPhoneToolMap(nil)

	assert.True(t, m.Add("5544999999999", "csv-processing"))
	assert.Equal(t, "csv-processing", m.ToolForPhone("5544999999999"))

	// Re-adding replaces the mapping.
	assert.True(t, m.Add("5544999999999", "transcription"))
	assert.Equal(t, "transcription", m.ToolForPhone("5544999999999"))

	assert.True(t, m.Remove("5544999999999"))
	assert.Equal(t, FallbackTool, m.ToolForPhone("5544999999999"))

	// Removing again reports no mapping existed.
	assert.False(t, m.Remove("5544999999999"))
}

func TestAddRejectsBlankInputs(t *testing.T) {
	m := NewPhoneToolMap(nil)

	assert.False(t, m.Add("", "transcription"))
	assert.False(t, m.Add("5544999999999", ""))
	assert.False(t, m.Remove(""))
	assert.Empty(t, m.All())
}

func TestAllReturnsCopy(t *testing.T) {
	m := NewPhoneToolMap(map[string]string{"5544999999999": "transcription"})

	all := m.All()
	all["5544999999999"] = "tampered"

	assert.Equal(t, "transcription", m.ToolForPhone("5544999999999"))
}
