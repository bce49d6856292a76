// Package queue is the durable FIFO between intake and the worker, backed by
// SQLite.
//
// Append adds a serialized submission at the tail. PopFront removes and
// returns the head, blocking until a message arrives or the context ends. A
// pop deletes the row in the same statement that reads it, so a message is
// handed out at most once; messages not yet popped survive restarts.
//
// Payloads the worker cannot decode are moved to the dead_letters table
// instead of being dropped. Schema changes bump schemaVersion; operators
// delete the database to adopt a new schema.
package queue
