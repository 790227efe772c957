//go:build windows

package fsys

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// isOffline reports whether the file is a cloud-sync placeholder. OneDrive
// and similar providers mark dehydrated files with the offline or
// recall-on-* attributes; opening such a file triggers a download.
func isOffline(info os.FileInfo) bool {
	sys, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return false
	}
	const placeholder = windows.FILE_ATTRIBUTE_OFFLINE |
		windows.FILE_ATTRIBUTE_RECALL_ON_DATA_ACCESS |
		windows.FILE_ATTRIBUTE_RECALL_ON_OPEN
	return sys.FileAttributes&placeholder != 0
}
