// Package apiresponses provides the JSON response helpers shared by every
// HTTP handler of the notifier.
package apiresponses
