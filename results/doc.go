// Package results holds experiment outcomes keyed by storage size, overlap
// ratio and trial, and persists them as framed checkpoint blobs.
//
// The JSON shape of a result set is
//
//	{"500_0.1_0": {"true": [ip, corr, n, scale], "cs": 0.79, "ps": [0.8, 300, 300]}}
//
// where sampling families carry their two memory sizes and NaN is written as null.
package results
