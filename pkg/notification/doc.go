// Package notification composes the administrator alert sent when a worker
// who is still active at one farm is registered at another one. An event is
// first turned into a structured Document, which is then rendered to HTML and
// to plain text from embedded templates.
package notification
