package identity

import (
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// namePatterns are tried in order; the last one treats the whole utterance
// as a name, so anything non-empty extracts.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is ([\w][\w ]*)`),
	regexp.MustCompile(`(?i)my name's ([\w][\w ]*)`),
	regexp.MustCompile(`(?i)you can call me ([\w][\w ]*)`),
	regexp.MustCompile(`(?i)call me ([\w][\w ]*)`),
	regexp.MustCompile(`(?i)i am ([\w][\w ]*)`),
	regexp.MustCompile(`(?i)i'm ([\w][\w ]*)`),
	regexp.MustCompile(`^([\w][\w ]*)$`),
}

// Manager extracts display names from free text and issues session-scoped
// user identifiers. Identifiers are deliberately ephemeral: the same name
// yields a fresh id on every extraction, since identity here lives only for
// one conversation.
type Manager struct {
	mu    sync.RWMutex
	names map[string]string // user id -> display name
}

// NewManager creates an empty identity manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]string)}
}

// ExtractName attempts several greeting patterns against the input, falling
// back to treating the entire utterance as a name. On success it returns a
// fresh session user id and the title-cased display name.
func (m *Manager) ExtractName(text string) (userID, displayName string, ok bool) {
	text = strings.TrimSpace(text)
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		name := titleCase(match[1])
		if name == "" {
			continue
		}
		id := uuid.NewString()
		m.mu.Lock()
		m.names[id] = name
		m.mu.Unlock()
		return id, name, true
	}
	return "", "", false
}

// UserName returns the display name recorded for a session user id.
func (m *Manager) UserName(userID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.names[userID]
	return name, ok
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}
