package wcag

import "errors"

// ErrInference is returned when an ML capability (text detection) fails.
// It is a distinct error kind so a broken detector can never be mistaken
// for a clean page.
var ErrInference = errors.New("wcag: inference backend failed")
