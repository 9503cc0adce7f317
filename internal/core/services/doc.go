// Package services holds the client-side state machines behind the driving
// ports: the conversation session, the document coordinator, sign-in,
// settings and the watched-folder upload scheduler.
//
// Services talk to the backend only through driven.BackendClient and never
// import an adapter.
package services
