// Package extract defines the uniform contract every extraction task
// implements: an identity, a run trigger, a message-window strategy,
// and an asynchronous producer that turns an oracle reply into events.
package extract
