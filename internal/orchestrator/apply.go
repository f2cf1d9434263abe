package orchestrator

// Resolver yields the replacement text for a unit.
type Resolver func(*Unit) string

// Apply overwrites every unit's owning run with the resolver's output.
// This is the sole mutation point for slide content; each unit touches a
// disjoint run, so ordering does not matter.
func Apply(units []*Unit, resolve Resolver) {
	for _, u := range units {
		u.Run.SetText(resolve(u))
	}
}

// FromResult builds a resolver that looks a unit's id up in a transform
// result and falls back to the unit's original text when the id is absent.
// A missing translation is a valid state, not an error.
func FromResult(result map[string]string) Resolver {
	return func(u *Unit) string {
		if t, ok := result[u.ID]; ok {
			return t
		}
		return u.Original
	}
}
