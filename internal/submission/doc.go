// Package submission defines the payment submission wire payload accepted at
// intake and carried through the work queue.
//
// Decode and Encode convert between the JSON wire form and Submission.
// Validate reports every absent required field at once. ParseAmount and
// CanonicalLocale turn the loosely typed wire strings into the values the
// records store persists.
package submission
