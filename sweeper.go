package perdomain

import (
	"slices"
	"time"

	"github.com/goliatone/go-options-perdomain/pkg/activity"
)

// handleRevoked deletes the data of every revoked origin that is not
// statically declared. It runs once per revocation batch.
func (m *Manager) handleRevoked(origins []string) {
	names := make([]string, 0, len(origins))
	for _, origin := range origins {
		if m.classifier.isStatic(origin) {
			continue
		}
		name := storageNameForOrigin(m.base, origin)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}

	ctx := m.ctx
	start := time.Now()
	err := m.deleteStorage(names)
	m.log(LogEvent{Op: "sweep", StorageName: m.base, Duration: time.Since(start), Err: err})
	if err != nil {
		return
	}
	m.emit(ctx, activity.BuildOriginsRevokedEvent(activity.StoreEventInput{StorageName: m.base}, origins, names))
}

func (m *Manager) deleteStorage(names []string) error {
	store, err := m.registry.get(m.ctx, m.base, "")
	if err != nil {
		return err
	}
	return store.DeleteData(m.ctx, names...)
}
