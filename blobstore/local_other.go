//go:build !unix

package blobstore

func syncDir(string) error { return nil }
