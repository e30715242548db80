package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Memory is a headless Form. Input simulates a user edit.
type Memory struct {
	mu       sync.Mutex
	values   Values
	watchers map[int]func(Values) error
	nextID   int
	nodes    []any
}

// NewMemory constructs an empty form.
func NewMemory() *Memory {
	return &Memory{
		values:   Values{},
		watchers: map[int]func(Values) error{},
	}
}

// Fill implements Form.
func (f *Memory) Fill(values Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = maps.Clone(values)
	if f.values == nil {
		f.values = Values{}
	}
	return nil
}

// Watch implements Form.
func (f *Memory) Watch(fn func(Values) error) func() {
	if fn == nil {
		return func() {}
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.watchers[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers, id)
			f.mu.Unlock()
		})
	}
}

// Input sets one field and notifies watchers with the full value set.
func (f *Memory) Input(field string, value any) error {
	f.mu.Lock()
	f.values[field] = value
	snapshot := maps.Clone(f.values)
	ids := slices.Sorted(maps.Keys(f.watchers))
	watchers := make([]func(Values) error, 0, len(ids))
	for _, id := range ids {
		watchers = append(watchers, f.watchers[id])
	}
	f.mu.Unlock()

	var errs []error
	for _, watcher := range watchers {
		if err := watcher(maps.Clone(snapshot)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Values returns a copy of the visible values.
func (f *Memory) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.values)
}

// Watchers reports the number of active watchers.
func (f *Memory) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

// Prepend inserts nodes before the existing content.
func (f *Memory) Prepend(nodes ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes = append(slices.Clone(nodes), f.nodes...)
}

// Nodes returns the inserted nodes in document order.
func (f *Memory) Nodes() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.nodes)
}

// MemoryDocument maps selectors to forms.
type MemoryDocument map[string]Form

// Query implements Document.
func (d MemoryDocument) Query(selector string) (Form, bool) {
	f, ok := d[selector]
	return f, ok && f != nil
}

// Picker is the headless choice control produced by PickerRenderer.
type Picker struct {
	Label string

	mu       sync.Mutex
	labels   []string
	selected string
	onChange ChangeFunc
}

// Selected implements Choice.
func (p *Picker) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Labels returns the offered labels in display order.
func (p *Picker) Labels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.labels)
}

// SetSelected changes the selection without running the change callback.
// It reports false for labels the picker does not offer.
func (p *Picker) SetSelected(label string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.labels, label) {
		return false
	}
	p.selected = label
	return true
}

// Select simulates the user picking label and runs the change callback.
func (p *Picker) Select(ctx context.Context, label string) error {
	p.mu.Lock()
	if !slices.Contains(p.labels, label) {
		p.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownChoice, label)
	}
	p.selected = label
	onChange := p.onChange
	p.mu.Unlock()

	if onChange == nil {
		return nil
	}
	return onChange(ctx, label)
}

// PickerRenderer renders Picker controls. Forms exposing Prepend receive the
// picker followed by a Separator.
type PickerRenderer struct {
	Label string

	mu      sync.Mutex
	pickers []*Picker
}

// Separator marks the rule inserted between the picker and the form fields.
type Separator struct{}

// RenderChoice implements ChoiceRenderer.
func (r *PickerRenderer) RenderChoice(f Form, labels []string, onChange ChangeFunc) (Choice, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("form: choice requires at least one label")
	}
	label := r.Label
	if label == "" {
		label = "Domain selector"
	}
	picker := &Picker{
		Label:    label,
		labels:   slices.Clone(labels),
		selected: labels[0],
		onChange: onChange,
	}
	if target, ok := f.(interface{ Prepend(...any) }); ok {
		target.Prepend(picker, Separator{})
	}
	r.mu.Lock()
	r.pickers = append(r.pickers, picker)
	r.mu.Unlock()
	return picker, nil
}

// Last returns the most recently rendered picker, or nil.
func (r *PickerRenderer) Last() *Picker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pickers) == 0 {
		return nil
	}
	return r.pickers[len(r.pickers)-1]
}
