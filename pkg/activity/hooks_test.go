package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:        " settings.domain.switched ",
		ActorID:     " actor ",
		ObjectType:  " settings.binding ",
		Channel:     " settings ",
		Origin:      " https://*.foo.example/* ",
		Domain:      " foo.example ",
		StorageName: " options-foo.example ",
		Metadata:    meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "settings.domain.switched" || got.ObjectType != "settings.binding" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.Channel != "settings" || got.Domain != "foo.example" || got.Origin != "https://*.foo.example/*" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.ObjectID != "options-foo.example" {
		t.Fatalf("expected ObjectID to default to storage name, got %q", got.ObjectID)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{ObjectID: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events()))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	var ctxSeen bool
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			if ctx != nil {
				ctxSeen = true
			}
			return nil
		}),
		capture,
		HookFunc(func(_ context.Context, _ Event) error { return boom1 }),
		nil,
		HookFunc(func(_ context.Context, _ Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context exercises the fallback
	err := hooks.Notify(nil, Event{Verb: VerbStoreCreated, ObjectType: ObjectTypeStore, StorageName: "options"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events()) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events()))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: VerbStoreCreated, ObjectType: ObjectTypeStore, StorageName: "options"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	var nilEmitter *Emitter
	if nilEmitter.Enabled() || nilEmitter.Emit(context.Background(), event) != nil {
		t.Fatalf("expected nil emitter to be inert")
	}

	enabled := NewEmitter(Hooks{nil, capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := capture.Events(); len(got) != 1 || got[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %+v", got)
	}
}

func TestEmitterPreservesExplicitChannelAndTime(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbStoreCreated,
		ObjectType: ObjectTypeStore,
		ObjectID:   "options",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events()[0]
	if got.Channel != "custom" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit channel and time preserved, got %+v", got)
	}
}

func TestCloneHooksDropsNil(t *testing.T) {
	if CloneHooks(Hooks{nil, nil}) != nil {
		t.Fatalf("expected nil for all-nil hooks")
	}
	if got := CloneHooks(Hooks{nil, &CaptureHook{}}); len(got) != 1 {
		t.Fatalf("expected one hook, got %d", len(got))
	}
}
