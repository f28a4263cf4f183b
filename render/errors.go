package render

import "errors"

var (
	// ErrNavigate marks a failure to open or load the target page.
	ErrNavigate = errors.New("render: navigation failed")

	// ErrCapture marks a failure to screenshot or snapshot a loaded page.
	ErrCapture = errors.New("render: capture failed")
)
