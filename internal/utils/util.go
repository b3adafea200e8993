package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	DefaultDirPermissions  = 0775
	DefaultFilePermissions = 0664
)

var FwregVersion = "n/a"

func GetFwregVersion() string {
	v, err := semver.NewVersion(FwregVersion)
	if err != nil {
		return FwregVersion
	}
	return strings.TrimPrefix(v.Original(), "v")
}

// ReadRequiredFile reads the file. Returns expanded absolute representation of the filename and file contents.
// Removes Byte-Order-Mark from the content
func ReadRequiredFile(name string) (string, []byte, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", nil, fmt.Errorf("error expanding file name %s: %w", name, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return "", nil, fmt.Errorf("error reading file %s: %w", abs, err)
	}
	if stat.IsDir() {
		return "", nil, fmt.Errorf("%s is not a file", abs)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", nil, fmt.Errorf("error reading file %s: %w", abs, err)
	}
	raw = removeBOM(raw)
	return abs, raw, nil
}

func removeBOM(bytes []byte) []byte {
	if len(bytes) > 2 && bytes[0] == 0xef && bytes[1] == 0xbb && bytes[2] == 0xbf {
		bytes = bytes[3:]
	}
	return bytes
}

// ExpandHome expands ~ in path with user's home directory, but only if path begins with ~ or /~
// Otherwise, returns path unchanged
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") && !strings.HasPrefix(path, "/~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand user home directory: %w", err)
	}
	_, rest, found := strings.Cut(path, "~")
	if !found {
		panic(errors.New("should have checked for ~ before"))
	}
	return filepath.Join(home, rest), nil
}

// RelSlash returns target relative to base with forward slashes, as used in index and site files
func RelSlash(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithin reports whether path equals dir or lies below it
func IsWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// EncodeJSONIndent encodes v with the given indent, without escaping HTML characters.
// The result ends with a newline
func EncodeJSONIndent(v any, indent string) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	err := encoder.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("unexpected encoding error %w", err)
	}
	return buffer.Bytes(), nil
}

// AtomicWriteFile writes data to the named file quasi-atomically, creating it if necessary.
// On unix-like systems, the function uses github.com/google/renameio.
// On Windows, it has a simpler implementation using os.Rename(), which is believed to be atomic on NTFS,
// but there is no hard guarantee from Microsoft on that.
func AtomicWriteFile(name string, data []byte, perm os.FileMode) error {
	return atomicWriteFile(name, data, perm)
}

func ParseAsList(list, separator string, trim bool) []string {
	ret := make([]string, 0)

	for _, entry := range strings.Split(list, separator) {
		if trim {
			entry = strings.TrimSpace(entry)
		}
		if entry != "" {
			ret = append(ret, entry)
		}
	}
	return ret
}

// CopyDir copies the directory tree below from into to, creating directories as needed.
// Existing files in to are overwritten. File modification times are preserved.
// A non-existing source directory is not an error, nothing is copied.
func CopyDir(from, to string) error {
	stat, err := os.Stat(from)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", from)
	}
	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(to, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, DefaultDirPermissions)
		}
		return CopyFile(path, dst)
	})
}

// CopyFile copies a single file, creating the target directory if necessary
func CopyFile(from, to string) error {
	err := os.MkdirAll(filepath.Dir(to), DefaultDirPermissions)
	if err != nil {
		return err
	}

	fromF, err := os.Open(from)
	if err != nil {
		return err
	}
	defer fromF.Close()
	info, err := fromF.Stat()
	if err != nil {
		return err
	}

	toF, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePermissions)
	if err != nil {
		return err
	}
	_, err = io.Copy(toF, fromF)
	cErr := toF.Close()
	if err != nil {
		return err
	}
	if cErr != nil {
		return cErr
	}
	return os.Chtimes(to, info.ModTime(), info.ModTime())
}

type ReadCloserGetter func() (io.ReadCloser, error)

func ReadCloserGetterFromBytes(raw []byte) ReadCloserGetter {
	return func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewBuffer(raw)), nil }
}

func ReadCloserGetterFromFilename(name string) ReadCloserGetter {
	return func() (io.ReadCloser, error) { return os.Open(name) }
}

// DetectMediaType detects the media type of the file. The type is guessed from the filename extension first,
// because static site files (.js, .css, .json) are not reliably recognized by content sniffing.
// If the extension is unknown, http.DetectContentType is used.
// If all of the above fails, it returns 'application/octet-stream'
func DetectMediaType(filename string, getReader ReadCloserGetter) string {
	const mediaOctetStream = "application/octet-stream"

	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct != "" {
		return ct
	}

	reader, err := getReader()
	if err == nil {
		defer reader.Close()
		truncatedContent, err := io.ReadAll(io.LimitReader(reader, 512))
		if err == nil && len(truncatedContent) > 0 {
			return http.DetectContentType(truncatedContent)
		}
	}
	return mediaOctetStream
}

type ctxKey string

const CtxKeyLogger ctxKey = "logger"

// GetLogger returns the logger that is valid in the context
// If component is not empty, the logger is extended with the field "where" having that value.
func GetLogger(ctx context.Context, component string) *slog.Logger {
	cv := ctx.Value(CtxKeyLogger)
	l, ok := cv.(*slog.Logger)
	if !ok || l == nil {
		l = slog.Default()
	}
	if component != "" {
		l = l.With("where", component)
	}
	return l
}
