package securefs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// GetLogger returns the securefs package logger scoped to the securefs module.
func GetLogger() logger.Logger {
	return logger.Global().Module("securefs")
}

// tempPrefix marks in-progress writes. Names with this prefix are never served.
const tempPrefix = ".upload-"

// SecureFS restricts all file operations to one base directory using os.Root,
// so symlinks and "../" components cannot escape it.
type SecureFS struct {
	baseDir string
	root    *os.Root
}

// New creates the base directory if needed and opens a sandboxed root on it.
func New(baseDir string) (*SecureFS, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o750); err != nil {
		return nil, errors.New(err).
			Component("securefs").
			Category(errors.CategoryFileIO).
			Context("path", absPath).
			Context("operation", "create-base-directory").
			Build()
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem sandbox: %w", err)
	}

	return &SecureFS{
		baseDir: absPath,
		root:    root,
	}, nil
}

// BaseDir returns the absolute base directory
func (sfs *SecureFS) BaseDir() string {
	return sfs.baseDir
}

// ValidateName checks that name is a plain file name inside the base directory.
func (sfs *SecureFS) ValidateName(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: empty or NUL-containing name", ErrInvalidPath)
	}

	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: path must be relative, got '%s'", ErrInvalidPath, name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: '%s'", ErrPathTraversal, name)
	}
	if cleaned == "." || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("%w: '%s' is not a base name", ErrInvalidPath, name)
	}

	return cleaned, nil
}

// SaveAtomic streams r into name. Data goes to a temporary file first and is
// renamed into place only after a successful write and sync, so a failed
// write leaves no partial file behind. It returns the number of bytes written.
func (sfs *SecureFS) SaveAtomic(name string, r io.Reader) (int64, error) {
	target, err := sfs.ValidateName(name)
	if err != nil {
		return 0, err
	}

	tempName, err := randomTempName()
	if err != nil {
		return 0, err
	}

	f, err := sfs.root.OpenFile(tempName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, errors.FileError(fmt.Errorf("failed to create temporary file: %w", err), target, 0)
	}

	written, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		sfs.removeQuietly(tempName)
		return 0, errors.FileError(fmt.Errorf("failed to write %s: %w", target, err), target, written)
	}

	if err := sfs.root.Rename(tempName, target); err != nil {
		sfs.removeQuietly(tempName)
		return 0, errors.FileError(fmt.Errorf("failed to commit %s: %w", target, err), target, written)
	}

	GetLogger().Debug("Stored file",
		logger.String("name", target),
		logger.Int64("size", written))
	return written, nil
}

// Open opens name for reading.
func (sfs *SecureFS) Open(name string) (*os.File, error) {
	validated, err := sfs.ValidateName(name)
	if err != nil {
		return nil, err
	}
	return sfs.root.Open(validated)
}

// Stat returns file info for name.
func (sfs *SecureFS) Stat(name string) (fs.FileInfo, error) {
	validated, err := sfs.ValidateName(name)
	if err != nil {
		return nil, err
	}
	return sfs.root.Stat(validated)
}

// Remove deletes name.
func (sfs *SecureFS) Remove(name string) error {
	validated, err := sfs.ValidateName(name)
	if err != nil {
		return err
	}
	return sfs.root.Remove(validated)
}

func (sfs *SecureFS) removeQuietly(name string) {
	if err := sfs.root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		GetLogger().Warn("Failed to remove temporary file",
			logger.String("name", name),
			logger.Error(err))
	}
}

func randomTempName() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate temporary name: %w", err)
	}
	return tempPrefix + hex.EncodeToString(b[:]), nil
}

// mapOpenErrorToHTTP converts file open errors to appropriate HTTP errors
func mapOpenErrorToHTTP(err error, name string) *echo.HTTPError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("File not found: %s", name))
	case errors.Is(err, fs.ErrPermission):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	case errors.Is(err, ErrPathTraversal), errors.Is(err, ErrInvalidPath):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file path").SetInternal(err)
	case errors.Is(err, ErrNotRegularFile):
		return echo.NewHTTPError(http.StatusForbidden, "Not a regular file")
	default:
		GetLogger().Error("Unhandled error serving file",
			logger.String("path", name),
			logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error serving file").SetInternal(err)
	}
}

// getContentType determines the content type for a file, using extension-based detection
func getContentType(path string) string {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

// ServeFile writes name to the response. It is the sandboxed counterpart of
// echo.Context.File and supports range requests through http.ServeContent.
func (sfs *SecureFS) ServeFile(c echo.Context, name string) error {
	if strings.HasPrefix(name, tempPrefix) {
		return mapOpenErrorToHTTP(fs.ErrNotExist, name)
	}

	f, err := sfs.Open(name)
	if err != nil {
		return mapOpenErrorToHTTP(err, name)
	}
	defer func() {
		if err := f.Close(); err != nil {
			GetLogger().Warn("Failed to close file", logger.Error(err))
		}
	}()

	stat, err := f.Stat()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get file info").SetInternal(err)
	}
	if !stat.Mode().IsRegular() {
		return mapOpenErrorToHTTP(ErrNotRegularFile, name)
	}

	if c.Response().Header().Get(echo.HeaderContentType) == "" {
		c.Response().Header().Set(echo.HeaderContentType, getContentType(name))
	}

	http.ServeContent(c.Response(), c.Request(), filepath.Base(name), stat.ModTime(), f)
	return nil
}

// Close releases the sandbox root
func (sfs *SecureFS) Close() error {
	if sfs.root != nil {
		return sfs.root.Close()
	}
	return nil
}
