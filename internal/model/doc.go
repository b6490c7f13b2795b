// Package model defines the data structures shared by the analysis packages.
//
// This package contains the following main types:
//   - Report: the flat analysis result, composed of per-feature groups
//   - URLParts: the structural decomposition of the input URL
//   - Page, RegistrationInfo, DNSRecords: what the collaborators return
//   - Verdict: caller-side classification of a score
//
// Models live in their own package so the decomposer, extractors, scorer,
// pipeline and report writers can share them without import cycles.
package model
