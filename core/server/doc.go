// Package server implements the read-only snapshot viewer.
//
// The viewer serves the snapshot index and the latest change report from
// the snapshot directory. It exposes:
//   - GET /healthz        liveness probe
//   - GET /api/snapshots  snapshot filename index
//   - GET /api/report     latest change report as JSON
//   - GET /report         latest change report as HTML
package server
