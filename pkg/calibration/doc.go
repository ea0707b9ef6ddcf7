// Package calibration defines the types shared by the hand-eye calibration
// daemon and its clients. It contains:
//
//   - Sample / Snapshot: synchronized transform pairs and the full ordered
//     projection of the acquired sample list
//   - Result: one completed calibration outcome
//   - the error taxonomy every calibration operation reports
//
// These types are shared across daemon, client and CLI code to avoid duplicate
// definitions and keep JSON contracts consistent.
package calibration
