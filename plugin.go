package ecs

import "fmt"

// Tag names a point in the schedule other systems can order themselves
// before or after, the way cubos::core::ecs::Tag lets a CUBOS_DEFINE_TAG
// constant be referenced from unrelated translation units. Here a Tag is
// just a comparable string identity created once and shared by every
// system that orders against it.
type Tag struct {
	name string
}

// NewTag constructs a tag with the given diagnostic name. Tags compare by
// name: two Tags built with the same name are equal and name the same point
// in the schedule, and a tag also matches a system registered under the
// same name.
func NewTag(name string) Tag {
	return Tag{name: name}
}

func (t Tag) String() string { return t.name }

// Plugin configures a WorldBuilder: registering components/relations,
// adding systems and observers, setting resources. Composing an
// application out of plugins (spec SS4.12) mirrors cubos's
// system/arguments/plugins.hpp composition model, expressed as plain Go
// closures instead of a registered-by-name plugin table.
type Plugin func(b *WorldBuilder)

// applyPlugin runs p against b, turning a panic inside the plugin into an
// error that reports which plugin was running.
func applyPlugin(b *WorldBuilder, name string, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ecs: plugin %q panicked: %v", name, r)
		}
	}()
	p(b)
	return nil
}
