// Package dispatch turns host interaction events into calls on the economy
// and answers each with an explicit verdict.
package dispatch

import (
	"realcoins/internal/protocol"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

type Kind int

const (
	// Allow lets the host apply its default handling.
	Allow Kind = iota
	// Deny cancels the triggering event.
	Deny
	// Deferred lets the event through and reports work queued for the next tick.
	Deferred
)

func (k Kind) String() string {
	switch k {
	case Deny:
		return protocol.VerdictDeny
	case Deferred:
		return protocol.VerdictDeferred
	}
	return protocol.VerdictAllow
}

// Verdict is the answer to one event. Message, when set, is shown to the
// acting player; Code is the wire error code for denials. Result is set
// for crafts that produce coins.
type Verdict struct {
	Kind    Kind
	Code    string
	Message string
	Result  *modelpkg.ItemStack
}

func allow() Verdict { return Verdict{Kind: Allow} }

func allowWith(msg string) Verdict { return Verdict{Kind: Allow, Message: msg} }

func deny(code, msg string) Verdict { return Verdict{Kind: Deny, Code: code, Message: msg} }

func deferred(msg string) Verdict { return Verdict{Kind: Deferred, Message: msg} }

func (v Verdict) Denied() bool { return v.Kind == Deny }
