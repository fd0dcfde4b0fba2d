// Package naming derives filesystem-safe names from image descriptions.
//
// Descriptions are normalized once into lowercase ASCII word tokens; group
// folder names and per-file names are then computed from those tokens.
package naming
