// Package http serves the onboarding page to browsers.
//
// Each visit to /onboarding mounts a page with its own coordinator. The page
// edits fields through a small JSON API and follows its submission state over
// server-sent events.
package http
