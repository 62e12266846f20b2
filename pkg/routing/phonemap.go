// Package routing resolves inbound sender phones to tool names.
package routing

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// FallbackTool is the tool used for phones without a specific mapping.
const FallbackTool = "forwarding"

// PhoneToolMap maps sender phone numbers to tool names. Lookup misses resolve
// to the fallback tool, so every non-blank sender has a route; the mapping is
// mutable at runtime through admin calls and is not persisted.
type PhoneToolMap struct {
	mappings map[string]string
	mu       sync.RWMutex
}

// NewPhoneToolMap creates a map seeded with the given static mappings.
func NewPhoneToolMap(seed map[string]string) *PhoneToolMap {
	m := &PhoneToolMap{
		mappings: make(map[string]string),
	}
	for phone, toolName := range seed {
		m.Add(phone, toolName)
	}
	return m
}

// IsPhoneAllowed reports whether the phone may use the system. Every
// non-blank phone is allowed; unmapped phones fall through to the fallback
// tool rather than being rejected.
func (m *PhoneToolMap) IsPhoneAllowed(phone string) bool {
	return strings.TrimSpace(phone) != ""
}

// ToolForPhone returns the tool name mapped to the phone, or the fallback
// tool name when no mapping exists. It returns "" only for blank input.
func (m *PhoneToolMap) ToolForPhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}

	m.mu.RLock()
	toolName, ok := m.mappings[phone]
	m.mu.RUnlock()

	if !ok {
		log.Debug().Str("phone", phone).Msg("No specific tool mapped for phone, using fallback")
		return FallbackTool
	}

	return toolName
}

// Add stores a phone-to-tool mapping. Blank inputs are ignored with a
// warning rather than an error.
func (m *PhoneToolMap) Add(phone, toolName string) bool {
	if strings.TrimSpace(phone) == "" {
		log.Warn().Msg("Cannot add mapping for blank phone number")
		return false
	}
	if strings.TrimSpace(toolName) == "" {
		log.Warn().Str("phone", phone).Msg("Cannot add mapping to blank tool name")
		return false
	}

	m.mu.Lock()
	m.mappings[phone] = toolName
	m.mu.Unlock()

	log.Info().Str("phone", phone).Str("tool", toolName).Msg("Phone mapping added")
	return true
}

// Remove deletes the mapping for the phone, reporting whether one existed.
func (m *PhoneToolMap) Remove(phone string) bool {
	if strings.TrimSpace(phone) == "" {
		log.Warn().Msg("Cannot remove mapping for blank phone number")
		return false
	}

	m.mu.Lock()
	_, existed := m.mappings[phone]
	delete(m.mappings, phone)
	m.mu.Unlock()

	if existed {
		log.Info().Str("phone", phone).Msg("Phone mapping removed")
	}
	return existed
}

// Fallback returns the tool name used for unmapped phones.
func (m *PhoneToolMap) Fallback() string {
	return FallbackTool
}

// All returns a copy of the current mappings.
func (m *PhoneToolMap) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mappings := make(map[string]string, len(m.mappings))
	for phone, toolName := range m.mappings {
		mappings[phone] = toolName
	}
	return mappings
}
