// Package preflight provides readiness checks for the external tools,
// services and filesystem paths dubstudio depends on.
//
// These checks run in two contexts:
//   - Workflow commands call RunAll before starting and refuse to run when
//     a data or output directory is unusable.
//   - The "dubstudio status" command uses Collect to display tool versions
//     and, on request, probes the translation API.
package preflight
