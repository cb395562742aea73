// Package experiment sweeps sketch families over storage budgets and trials of
// synthetic vector pairs, recording estimates next to the exact values.
//
// A run generates one pair per trial, estimates its correlation with every
// configured family at every storage size and checkpoints the full result set
// after each storage size. Cells already present in a prior result set are
// copied instead of recomputed, so an interrupted run can be resumed.
package experiment
