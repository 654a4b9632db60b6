// Package completion adapts hosted and local language models to the single
// call the conversation service needs: messages in, content fragments out.
package completion

import (
	"context"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
}

// Completer returns the text fragments of a single completion. An empty
// slice is a valid answer.
type Completer interface {
	Complete(ctx context.Context, messages []Message) ([]string, error)
}

// JoinFragments collapses fragments into one reply: none gives "", a single
// fragment is returned as is, several are joined with one space.
func JoinFragments(fragments []string) string {
	switch len(fragments) {
	case 0:
		return ""
	case 1:
		return fragments[0]
	default:
		return strings.Join(fragments, " ")
	}
}
