// Package memory provides an in-process implementation of the store
// interfaces. It backs tests and the "memory" database driver; data does not
// survive a restart.
package memory
