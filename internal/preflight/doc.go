// Package preflight provides readiness checks for the filesystem paths and
// databases wpp depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll before opening its stores and refuses to start
//     when any check fails.
//   - The CLI "wpp config check" command prints every result as a table.
package preflight
