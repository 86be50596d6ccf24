// Package receiver keeps one interception Coordinator per playback
// receiver.
//
// A receiver is a single playback surface (one device, one player). Each
// has at most one logical session; load requests for different receivers
// never share state.
package receiver
