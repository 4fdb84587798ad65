package models

import "html/template"

// LoginPageData represents the data passed to the login template for rendering.
// It contains all information needed to display the login form with its
// loading and error state.
type LoginPageData struct {
	// Title is the page title displayed in the browser tab
	Title string

	// Username is repopulated after a failed attempt so users don't have to re-type.
	// The password is never echoed back.
	Username string

	// Error contains the message shown under the form. Empty string means no error.
	Error string

	// Loading renders the submit button disabled with the "Signing in..." indicator.
	Loading bool

	// CSRFField is the hidden CSRF input, empty when CSRF protection is disabled.
	CSRFField template.HTML
}
