// Package storage provides output directory and file naming management
// for downloaded elements.
//
// The storage package handles:
//   - Creating the output directory (and parents) if absent
//   - Resolving collision-free file names with numeric suffixes
//   - Atomic file writes using temporary files and rename
//
// The Manager type is the primary interface for storage operations. Name
// resolution and the subsequent write are serialized under a single
// mutex, so concurrent downloads whose URLs share a base name are
// renamed instead of silently overwriting each other.
//
// Usage:
//
//	manager, err := storage.NewManager("output_directory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, err := manager.Save("picture.png", data)
//	if err != nil {
//	    log.Printf("Failed to save element: %v", err)
//	}
//	// name is "picture.png", or "picture_(1).png" on collision
package storage
