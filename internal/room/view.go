package room

import (
	"slices"
	"time"

	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/game/shedding"
)

// View is the room as one seat, or a spectator, may see it.
type View struct {
	Game      Game            `json:"game"`
	Code      string          `json:"code"`
	HostID    string          `json:"hostId"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	You       string          `json:"you,omitempty"`
	Blackjack *blackjack.View `json:"blackjack,omitempty"`
	Vandtia   *shedding.View  `json:"vandtia,omitempty"`
}

// View projects the room for viewer. An empty or unseated viewer gets the
// spectator view with every private card concealed.
func (r *Room) View(viewer string) View {
	if !slices.Contains(r.PlayerIDs(), viewer) {
		viewer = ""
	}
	v := View{
		Game:      r.Game,
		Code:      r.Code,
		HostID:    r.HostID,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
		You:       viewer,
	}
	switch {
	case r.Blackjack != nil:
		bv := r.Blackjack.View(viewer)
		v.Blackjack = &bv
	case r.Shedding != nil:
		sv := r.Shedding.View(viewer)
		v.Vandtia = &sv
	}
	return v
}
