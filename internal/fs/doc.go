// Package fs abstracts the file operations the local blob store performs so
// tests can inject write, sync and close failures.
//
// Production code uses [Default]; tests wrap it with [NewFaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".snap", fs.Fault{FailOnSync: true})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
package fs
