package activity

import (
	"slices"
	"strings"
	"time"
)

const (
	VerbStoreCreated    = "settings.store.created"
	VerbDomainSwitched  = "settings.domain.switched"
	VerbOriginsRevoked  = "settings.origins.revoked"
	ObjectTypeStore     = "settings.store"
	ObjectTypeBinding   = "settings.binding"
	ObjectTypeOriginSet = "settings.origins"
)

// StoreEventInput describes the common fields for settings store events.
type StoreEventInput struct {
	ActorID     string
	Channel     string
	Origin      string
	Domain      string
	StorageName string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// BuildStoreCreatedEvent describes the first construction of a store.
func BuildStoreCreatedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreCreated, ObjectTypeStore, input)
}

// BuildDomainSwitchedEvent describes a form switching to another domain.
// previous is recorded as metadata when not empty.
func BuildDomainSwitchedEvent(input StoreEventInput, previous string) Event {
	if previous = strings.TrimSpace(previous); previous != "" {
		input.Metadata = ensureMetadata(cloneMap(input.Metadata))
		input.Metadata["previous_domain"] = previous
	}
	return buildStoreEvent(VerbDomainSwitched, ObjectTypeBinding, input)
}

// BuildOriginsRevokedEvent describes a sweep after a permission revocation.
func BuildOriginsRevokedEvent(input StoreEventInput, revoked, deleted []string) Event {
	input.Metadata = ensureMetadata(cloneMap(input.Metadata))
	input.Metadata["revoked_origins"] = slices.Clone(revoked)
	input.Metadata["deleted_storage_names"] = slices.Clone(deleted)
	return buildStoreEvent(VerbOriginsRevoked, ObjectTypeOriginSet, input)
}

func buildStoreEvent(verb, objectType string, input StoreEventInput) Event {
	objectID := strings.TrimSpace(input.StorageName)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Domain)
	}
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:        verb,
		ActorID:     strings.TrimSpace(input.ActorID),
		ObjectType:  objectType,
		ObjectID:    objectID,
		Channel:     strings.TrimSpace(input.Channel),
		Origin:      strings.TrimSpace(input.Origin),
		Domain:      strings.TrimSpace(input.Domain),
		StorageName: strings.TrimSpace(input.StorageName),
		Metadata:    cloneMap(input.Metadata),
		OccurredAt:  input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
