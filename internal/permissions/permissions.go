// Package permissions evaluates what an actor may do in a channel. The
// message pipeline only consumes the SendMessage capability; the rest of the
// set is exposed for other surfaces.
package permissions

import (
	"github.com/lumochat/lumo/internal/channel"
)

// Permission is a single channel capability bit.
type Permission uint32

const (
	View Permission = 1 << iota
	SendMessage
	ManageMessages
	ManageChannel
	VoiceCall
	InviteOthers
	UploadFiles
)

// None grants nothing.
const None Permission = 0

// All grants every capability.
const All = View | SendMessage | ManageMessages | ManageChannel | VoiceCall | InviteOthers | UploadFiles

// recipientDefault is what a direct or group member may do.
const recipientDefault = View | SendMessage | VoiceCall | InviteOthers | UploadFiles

// Set is the resolved capability set for one actor on one channel.
type Set struct {
	value Permission
}

// Can reports whether the set includes p.
func (s Set) Can(p Permission) bool {
	return s.value&p == p
}

// Value exposes the raw bits, for serialization.
func (s Set) Value() uint32 {
	return uint32(s.value)
}

// Calculator resolves capability sets. It is stateless; nothing is cached
// across calls.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// For resolves the capability set of actorID on ch.
func (c *Calculator) For(actorID string, ch channel.Channel) Set {
	switch ch.Kind {
	case channel.KindSavedMessages:
		if ch.OwnerID == actorID {
			return Set{value: All}
		}
		return Set{value: None}
	case channel.KindDirectMessage, channel.KindGroup:
		if ch.HasRecipient(actorID) {
			if ch.Kind == channel.KindGroup && ch.OwnerID == actorID {
				return Set{value: All}
			}
			return Set{value: recipientDefault}
		}
		return Set{value: None}
	default:
		return Set{value: None}
	}
}
