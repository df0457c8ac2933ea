// Package ime hosts the composer behind an input method bus. The Linux
// frontend registers an IBus engine on the session bus and translates
// between IBus key events and the composition core.
package ime
