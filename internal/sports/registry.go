package sports

import (
	"fmt"
	"sort"
	"sync"
)

// Sport is the registry key for everything that varies per sport: player
// profile choice sets, ad positions, experience ladders. Adding a sport
// means registering a new Definition, not branching on strings.
type Sport string

// Definition carries the choice sets a sport exposes to player profiles
// and recruitment ads.
type Definition struct {
	Sport            Sport
	Positions        []string
	Feet             []string
	ExperienceLevels []string
	SpecialAbilities []string
}

func (d Definition) ValidPosition(p string) bool   { return contains(d.Positions, p) }
func (d Definition) ValidFoot(f string) bool       { return contains(d.Feet, f) }
func (d Definition) ValidExperience(e string) bool { return contains(d.ExperienceLevels, e) }
func (d Definition) ValidAbility(a string) bool    { return contains(d.SpecialAbilities, a) }

var (
	mu       sync.RWMutex
	registry = map[Sport]Definition{}
)

// Register installs a sport definition. Registering the same sport twice
// panics; definitions are wired at init time.
func Register(def Definition) {
	mu.Lock()
	defer mu.Unlock()
	if def.Sport == "" {
		panic("sports: definition missing sport key")
	}
	if _, dup := registry[def.Sport]; dup {
		panic(fmt.Sprintf("sports: %q registered twice", def.Sport))
	}
	registry[def.Sport] = def
}

// Lookup returns the definition for a sport.
func Lookup(s Sport) (Definition, bool) {
	mu.RLock()
	defer mu.RUnlock()
	def, ok := registry[s]
	return def, ok
}

// All returns the registered sports in stable order.
func All() []Sport {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Sport, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func contains(set []string, val string) bool {
	for _, s := range set {
		if s == val {
			return true
		}
	}
	return false
}
