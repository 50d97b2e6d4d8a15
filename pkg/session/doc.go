/*
Package session implements session management and persistence orchestration.

It serialises access to a conversation so that two answers to the same session are never
applied concurrently, combining per-process mutexes with an optional distributed lock
and a ports.StateStore for durable state.
*/
package session
