package permissions

import (
	"testing"

	"github.com/lumochat/lumo/internal/channel"
)

func TestCalculatorFor(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()

	tests := []struct {
		name    string
		actorID string
		ch      channel.Channel
		canSend bool
		canView bool
		manage  bool
	}{
		{
			name:    "saved messages owner has everything",
			actorID: "u1",
			ch:      channel.Channel{Kind: channel.KindSavedMessages, OwnerID: "u1"},
			canSend: true,
			canView: true,
			manage:  true,
		},
		{
			name:    "saved messages stranger has nothing",
			actorID: "u2",
			ch:      channel.Channel{Kind: channel.KindSavedMessages, OwnerID: "u1"},
		},
		{
			name:    "direct message recipient can send",
			actorID: "u2",
			ch: channel.Channel{
				Kind:       channel.KindDirectMessage,
				OwnerID:    "u1",
				Recipients: []string{"u1", "u2"},
			},
			canSend: true,
			canView: true,
		},
		{
			name:    "direct message stranger has nothing",
			actorID: "u3",
			ch: channel.Channel{
				Kind:       channel.KindDirectMessage,
				OwnerID:    "u1",
				Recipients: []string{"u1", "u2"},
			},
		},
		{
			name:    "group member can send but not manage",
			actorID: "u2",
			ch: channel.Channel{
				Kind:       channel.KindGroup,
				OwnerID:    "u1",
				Recipients: []string{"u1", "u2", "u3"},
			},
			canSend: true,
			canView: true,
		},
		{
			name:    "group owner has everything",
			actorID: "u1",
			ch: channel.Channel{
				Kind:       channel.KindGroup,
				OwnerID:    "u1",
				Recipients: []string{"u1", "u2"},
			},
			canSend: true,
			canView: true,
			manage:  true,
		},
		{
			name:    "group owner not in recipients has nothing",
			actorID: "u1",
			ch: channel.Channel{
				Kind:       channel.KindGroup,
				OwnerID:    "u1",
				Recipients: []string{"u2", "u3"},
			},
		},
		{
			name:    "unknown kind has nothing",
			actorID: "u1",
			ch:      channel.Channel{Kind: "voice", OwnerID: "u1", Recipients: []string{"u1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set := calc.For(tt.actorID, tt.ch)
			if got := set.Can(SendMessage); got != tt.canSend {
				t.Errorf("Can(SendMessage) = %v, want %v", got, tt.canSend)
			}
			if got := set.Can(View); got != tt.canView {
				t.Errorf("Can(View) = %v, want %v", got, tt.canView)
			}
			if got := set.Can(ManageChannel); got != tt.manage {
				t.Errorf("Can(ManageChannel) = %v, want %v", got, tt.manage)
			}
		})
	}
}

func TestSetCanRequiresAllBits(t *testing.T) {
	t.Parallel()

	s := Set{value: View | SendMessage}
	if !s.Can(View | SendMessage) {
		t.Fatal("expected combined bits to be granted")
	}
	if s.Can(View | ManageMessages) {
		t.Fatal("expected partial match to be denied")
	}
	if s.Value() != uint32(View|SendMessage) {
		t.Fatalf("Value() = %d, want %d", s.Value(), uint32(View|SendMessage))
	}
}
