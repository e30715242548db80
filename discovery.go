package perdomain

import (
	"context"
	"iter"
	"slices"
	"sync/atomic"
)

// ListAdditionalOrigins returns the origins granted after install, each with
// its domain label. The permission query runs before returning; labels are
// computed while iterating. The sequence can be ranged over once, call again
// for a fresh one.
func (m *Manager) ListAdditionalOrigins(ctx context.Context) (iter.Seq[AdditionalOrigin], error) {
	if m.cfg.execution.IsInjected() {
		return nil, &WrongContextError{Op: "ListAdditionalOrigins"}
	}
	return m.additionalOrigins(ctx)
}

func (m *Manager) additionalOrigins(ctx context.Context) (iter.Seq[AdditionalOrigin], error) {
	granted, err := m.cfg.permissions.GrantedOrigins(ctx, GrantQuery{ExactMatchOnly: true})
	if err != nil {
		return nil, err
	}
	static := m.cfg.permissions.StaticOrigins()

	var consumed atomic.Bool
	return func(yield func(AdditionalOrigin) bool) {
		if consumed.Swap(true) {
			return
		}
		for _, origin := range granted {
			if slices.Contains(static, origin) {
				continue
			}
			if !yield(AdditionalOrigin{Origin: origin, Domain: ParseHost(origin)}) {
				return
			}
		}
	}, nil
}
