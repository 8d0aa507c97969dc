package valueobjects

import "fmt"

// ActorKind identifies who initiated an administrative change.
type ActorKind string

const (
	ActorNone     ActorKind = ""
	ActorSeller   ActorKind = "seller"
	ActorAdmin    ActorKind = "admin"
	ActorSupAdmin ActorKind = "supadmin"
)

// Actor is exactly one of seller, admin or supadmin, or none at all.
// The zero value is the none actor. Fields are unexported so a kind can
// never be paired with a missing id.
type Actor struct {
	kind ActorKind
	id   uint
}

func NoActor() Actor {
	return Actor{}
}

func SellerActor(id uint) Actor {
	return Actor{kind: ActorSeller, id: id}
}

func AdminActor(id uint) Actor {
	return Actor{kind: ActorAdmin, id: id}
}

func SupAdminActor(id uint) Actor {
	return Actor{kind: ActorSupAdmin, id: id}
}

// ParseActor rebuilds an actor from its persisted pair. An empty kind
// yields the none actor regardless of id.
func ParseActor(kind string, id uint) (Actor, error) {
	switch ActorKind(kind) {
	case ActorNone:
		return NoActor(), nil
	case ActorSeller, ActorAdmin, ActorSupAdmin:
		if id == 0 {
			return Actor{}, fmt.Errorf("actor %s requires an id", kind)
		}
		return Actor{kind: ActorKind(kind), id: id}, nil
	default:
		return Actor{}, fmt.Errorf("unknown actor kind: %s", kind)
	}
}

func (a Actor) Kind() ActorKind {
	return a.kind
}

func (a Actor) ID() uint {
	return a.id
}

func (a Actor) IsNone() bool {
	return a.kind == ActorNone
}

// CanOverride reports whether the actor may bypass the plan change policy.
func (a Actor) CanOverride() bool {
	return a.kind == ActorAdmin || a.kind == ActorSupAdmin
}

func (a Actor) String() string {
	if a.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", a.kind, a.id)
}
