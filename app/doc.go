// Package app is the demo application served by ssrd: a small item viewer
// with three static pages, one of them loaded lazily.
package app
