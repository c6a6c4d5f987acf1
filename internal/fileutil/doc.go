// Package fileutil walks documentation trees and checks the files the
// documentation checks depend on.
//
// ScanDirectory returns sorted absolute paths filtered by extension, name
// pattern and excluded directory names. Hidden directories are never entered.
// Non-fatal walk errors are collected in ScanResult.Errors so one unreadable
// subdirectory does not hide the rest of the tree.
//
//	result, err := fileutil.ScanDirectory(docsDir, fileutil.ScanOptions{
//	    Extensions:  []string{".rst"},
//	    Recursive:   true,
//	    ExcludeDirs: []string{"_build"},
//	})
//
// RequireFile, RequireNonEmpty and RequireDir return errors wrapping
// ErrMissing, ErrEmpty or ErrNotDirectory, naming the path at fault.
package fileutil
