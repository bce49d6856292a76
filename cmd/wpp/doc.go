// Command wpp runs and operates the payment submission pipeline.
//
// "wpp serve" starts the HTTP intake API together with the single queue
// worker; "wpp worker" runs the worker alone. The remaining commands open
// the SQLite stores directly, so they work whether or not a daemon is
// running: submit queues a payload through the same intake gate as the API,
// status and queue inspect state, and records shows what was persisted.
package main
