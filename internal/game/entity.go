package game

import "strings"

// EntityKind distinguishes lone players from round groups.
type EntityKind int

const (
	EntityPlayer EntityKind = iota
	EntityGroup
)

// Entity is one competitor in a round: a single player or a group whose
// members share winnings and losses.
type Entity struct {
	ID      string     `json:"id"`
	Kind    EntityKind `json:"kind"`
	Members []string   `json:"members"`
	Label   string     `json:"label"`
}

// IsGroup reports whether the entity is a group.
func (e Entity) IsGroup() bool {
	return e.Kind == EntityGroup
}

// EntityOf resolves a player to the entity competing for them: their
// group's id when grouped, their own id otherwise.
func (r Round) EntityOf(playerID string) string {
	if g, ok := r.GroupOf(playerID); ok {
		return g.ID
	}
	return playerID
}

// Entities lists the distinct entities among the participants in
// selection order. name resolves player ids to display names.
func (r Round) Entities(name func(string) string) []Entity {
	seen := make(map[string]bool, len(r.Participants))
	out := make([]Entity, 0, len(r.Participants))
	for _, pid := range r.Participants {
		eid := r.EntityOf(pid)
		if seen[eid] {
			continue
		}
		seen[eid] = true

		if g, ok := r.Group(eid); ok {
			names := make([]string, len(g.MemberIDs))
			for i, m := range g.MemberIDs {
				names[i] = name(m)
			}
			out = append(out, Entity{
				ID:      g.ID,
				Kind:    EntityGroup,
				Members: append([]string(nil), g.MemberIDs...),
				Label:   strings.Join(names, "/"),
			})
			continue
		}
		out = append(out, Entity{
			ID:      pid,
			Kind:    EntityPlayer,
			Members: []string{pid},
			Label:   name(pid),
		})
	}
	return out
}

func findEntity(entities []Entity, id string) (Entity, bool) {
	for _, e := range entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}
