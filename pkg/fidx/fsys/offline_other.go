//go:build !windows

package fsys

import "os"

// isOffline reports whether the file is a cloud-sync placeholder. Placeholder
// attributes are a Windows concept; other platforms report false.
func isOffline(_ os.FileInfo) bool {
	return false
}
