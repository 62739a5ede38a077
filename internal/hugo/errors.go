package hugo

import "errors"

var (
	// ErrHugoExecutionFailed indicates the hugo command returned a non-zero exit status.
	ErrHugoExecutionFailed = errors.New("hugo execution failed")
	// ErrSiteNotFound indicates the site directory does not exist.
	ErrSiteNotFound = errors.New("hugo site directory not found")
	// ErrTitleNotFound indicates a rendered page has no <title> element.
	ErrTitleNotFound = errors.New("rendered page has no title")
)
