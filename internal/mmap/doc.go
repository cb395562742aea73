// Package mmap maps checkpoint files read-only into memory.
//
//	m, err := mmap.Open("results.ckpt")
//	if err != nil { ... }
//	defer m.Close()
//	m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op. Bytes must not be used after Close.
package mmap
