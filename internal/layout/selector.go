package layout

import "image"

// Select returns the Layout of the first matching option in configured
// order, or nil when nothing matches (the cycle is then skipped). Pure
// function, no side effects.
func Select(img *image.RGBA, options []Option) *Layout {
	for i := range options {
		if options[i].Matches(img) {
			return &options[i].Layout
		}
	}
	return nil
}

// SelectAll returns every matching option, for diagnostics.
func SelectAll(img *image.RGBA, options []Option) []*Option {
	var matches []*Option
	for i := range options {
		if options[i].Matches(img) {
			matches = append(matches, &options[i])
		}
	}
	return matches
}
