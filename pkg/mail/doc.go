// Package mail delivers notification messages through an SMTP relay. The
// Dispatcher decides once, at construction, whether the relay is usable and
// performs at most one delivery attempt per send.
package mail
