// Package preflight provides readiness checks for the filesystem paths and
// external tools the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup; a failed check is logged loudly
//     before any job can run into it mid-pipeline.
//   - The CLI "splitripper status" command uses the individual check
//     functions to display tool and directory health.
package preflight
