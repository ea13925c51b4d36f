package epub

import "errors"

// Sentinel errors of the epub package. ErrMissingAssetDir and
// ErrFileNotFound are reported in Assets.Errors and PackageInfo.Errors
// rather than returned.
var (
	// ErrMissingAssetDir indicates a requested chapters/ or illustrations/
	// directory does not exist. It is never fatal: the collector records it
	// in Assets.Missing and Assets.Errors and the category is left out of
	// the archive.
	ErrMissingAssetDir = errors.New("epub: asset directory not found")

	// ErrArchiveIO indicates the output archive could not be created,
	// written or closed (e.g., disk full, permission denied). The partially
	// written file is removed before the error is returned.
	ErrArchiveIO = errors.New("epub: archive I/O failure")

	// ErrFinalized indicates an operation on an Archive that has already
	// been emitted (or closed). Emitting twice is a programming error.
	ErrFinalized = errors.New("epub: archive already finalized")

	// ErrInvalidEPub indicates the file is not a valid ePub
	// (e.g., missing container.xml and no .opf file found).
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")
)
