// Package ssm implements the client side of the SSM session-management backend.
//
// A Session owns one playback session's lifecycle against the backend:
//
//	Unestablished --Setup ok--> Established --Teardown--> TornDown
//	      |                                                  ^
//	      +---------------------Teardown---------------------+
//
// Setup failures leave the session Unestablished. TornDown is terminal and
// any later token or setup call fails with domain.ErrSessionTornDown.
//
// The wire calls live behind the Backend interface; HTTPBackend speaks the
// SSM REST API.
package ssm
