package extraction

import "context"

// Page is the capability set a host offers for one resolution. A nil field
// means the host cannot provide that capability.
type Page struct {
	// Global returns the player response held in the page's own evaluation
	// context, if any.
	Global func() ([]byte, bool)
	// Element calls the host player element's metadata accessor.
	Element func(ctx context.Context) ([]byte, error)
	// Scripts returns the text of the page's inline script elements.
	Scripts func() []string
}

// StaticGlobal wraps an already captured document as a Global capability.
// Empty input yields a nil capability.
func StaticGlobal(doc []byte) func() ([]byte, bool) {
	if len(doc) == 0 {
		return nil
	}
	return func() ([]byte, bool) { return doc, true }
}

// StaticElement wraps an already captured accessor response.
func StaticElement(doc []byte) func(context.Context) ([]byte, error) {
	if len(doc) == 0 {
		return nil
	}
	return func(context.Context) ([]byte, error) { return doc, nil }
}

// StaticScripts wraps a fixed list of script bodies.
func StaticScripts(scripts []string) func() []string {
	if len(scripts) == 0 {
		return nil
	}
	return func() []string { return scripts }
}

// Capabilities lists the capability names p offers, for logging.
func (p Page) Capabilities() []string {
	var caps []string
	if p.Global != nil {
		caps = append(caps, "global")
	}
	if p.Element != nil {
		caps = append(caps, "element")
	}
	if p.Scripts != nil {
		caps = append(caps, "scripts")
	}
	return caps
}
