// Package form defines the minimal form surface a settings store binds to,
// plus headless in-memory implementations.
//
// A Form is filled with stored values and reports user input through Watch.
// A Document resolves selectors to forms. A ChoiceRenderer inserts a choice
// control ahead of a form's content and reports selection changes.
package form

import (
	"context"
	"errors"
)

// ErrUnknownChoice is returned when selecting a label the control does not offer.
var ErrUnknownChoice = errors.New("form: unknown choice")

// Values holds field values keyed by field name.
type Values = map[string]any

// Form is a bindable set of fields.
type Form interface {
	// Fill replaces the visible field values.
	Fill(values Values) error
	// Watch registers fn for every user input and returns a function that
	// stops the registration.
	Watch(fn func(values Values) error) (stop func())
}

// Document resolves selectors to forms.
type Document interface {
	Query(selector string) (Form, bool)
}

// Choice is a rendered choice control.
type Choice interface {
	// Selected returns the currently selected label.
	Selected() string
}

// ChangeFunc is invoked with the newly selected label.
type ChangeFunc func(ctx context.Context, label string) error

// ChoiceRenderer renders a choice control with labels (the first one
// selected) in front of the form content.
type ChoiceRenderer interface {
	RenderChoice(f Form, labels []string, onChange ChangeFunc) (Choice, error)
}

// ChoiceRendererFunc adapts a function to ChoiceRenderer.
type ChoiceRendererFunc func(f Form, labels []string, onChange ChangeFunc) (Choice, error)

// RenderChoice implements ChoiceRenderer.
func (fn ChoiceRendererFunc) RenderChoice(f Form, labels []string, onChange ChangeFunc) (Choice, error) {
	return fn(f, labels, onChange)
}
