package formula

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	apperrors "catpost/internal/errors"
)

// Resolver turns species labels into compositions. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	aliases map[string]Composition
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the process-wide resolver holding the built-in aliases.
func Default() *Resolver {
	defaultOnce.Do(func() {
		r, err := (&Resolver{}).WithAliases(builtinAliases)
		if err != nil {
			panic(fmt.Sprintf("formula: invalid built-in alias: %v", err))
		}
		defaultResolver = r
	})
	return defaultResolver
}

// WithAliases returns a new Resolver that knows r's aliases plus extra.
// Entries in extra win over existing names. Every alias target must be a
// valid formula.
func (r *Resolver) WithAliases(extra map[string]string) (*Resolver, error) {
	next := &Resolver{aliases: make(map[string]Composition, len(r.aliases)+len(extra))}
	for name, comp := range r.aliases {
		next.aliases[name] = comp
	}
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := aliasKey(name)
		if key == "" {
			return nil, apperrors.NewValidationError("empty alias name")
		}
		comp, err := Parse(strings.TrimSpace(extra[name]))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("alias %q has invalid formula %q", name, extra[name]), err)
		}
		next.aliases[key] = comp
	}
	return next, nil
}

// LoadAliases reads a YAML mapping of names to formulas and layers it over
// the default resolver:
//
//	isopropanol: C3H8O
//	syngas-co: CO
func LoadAliases(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read alias file", err).WithContext("path", path)
	}
	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, apperrors.NewParsingError("failed to parse alias file", err).WithContext("path", path)
	}
	return Default().WithAliases(extra)
}

// Resolve returns the composition of label. Formulas take precedence over
// names; the returned map must not be modified.
func (r *Resolver) Resolve(label string) (Composition, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return nil, apperrors.NewUnknownSpeciesError(label, "empty label")
	}
	comp, perr := Parse(trimmed)
	if perr == nil {
		return comp, nil
	}
	if comp, ok := r.aliases[aliasKey(trimmed)]; ok {
		return comp, nil
	}
	return nil, apperrors.NewUnknownSpeciesError(label, perr.Error())
}

// Count returns the number of atoms of element in label.
func (r *Resolver) Count(label, element string) (int, error) {
	comp, err := r.Resolve(label)
	if err != nil {
		return 0, err
	}
	return comp.Count(element), nil
}

// Canonical returns the Hill formula of label, so that "propane", "C3H8"
// and "CH3CH2CH3" compare equal.
func (r *Resolver) Canonical(label string) (string, error) {
	comp, err := r.Resolve(label)
	if err != nil {
		return "", err
	}
	return comp.Hill(), nil
}

// DefaultElement picks the element a calculation is based on when none is
// given: carbon if present, otherwise the most abundant element other than
// hydrogen (alphabetical on ties), and hydrogen only for pure hydrogen.
func (r *Resolver) DefaultElement(label string) (string, error) {
	comp, err := r.Resolve(label)
	if err != nil {
		return "", err
	}
	return DefaultElementOf(comp), nil
}

// DefaultElementOf applies the DefaultElement rule to a composition.
func DefaultElementOf(comp Composition) string {
	if comp.Has("C") {
		return "C"
	}
	best, bestN := "", 0
	for el, n := range comp {
		if el == "H" || n <= 0 {
			continue
		}
		if n > bestN || (n == bestN && el < best) {
			best, bestN = el, n
		}
	}
	if best == "" && comp.Has("H") {
		return "H"
	}
	return best
}

// Aliases returns the registered alias names in sorted order.
func (r *Resolver) Aliases() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func aliasKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
