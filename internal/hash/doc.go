// Package hash provides the hashing primitives shared by sketches and checkpoints.
//
// # Coordinate hashing
//
// Sketches of two vectors are only comparable when they make the same random
// choice for the same coordinate. Every choice (bucket, sign, rank, uniform
// variate) is therefore derived from a seeded 64-bit hash of the coordinate
// index, computed with MetroHash:
//
//	h := hash.Key(seed, uint64(i))
//	u := hash.Unit(seed, uint64(i))  // (0, 1)
//	s := hash.Sign(seed, uint64(i))  // ±1
//
// Independent hash functions (rows, slots) are obtained with Derive:
//
//	rowSeed := hash.Derive(seed, row)
//
// # Checksums
//
// Checkpoint blobs are protected with CRC32-Castagnoli:
//
//	checksum := hash.CRC32C(data)
package hash
