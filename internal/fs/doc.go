// Package fs abstracts the file operations of atomic blob writes so tests can
// inject I/O failures.
//
// Production code uses [Default], a thin wrapper over the os package. Tests
// wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("run.ckpt", fs.Fault{FailOnSync: true})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
package fs
