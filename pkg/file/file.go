// Package file models simple owned files and line oriented text files.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotCreator indicates a read was attempted by someone other than the file's creator.
var ErrNotCreator = errors.New("not the file creator")

// File is a named blob of content lines owned by its creator.
type File struct {
	Name    string
	KBSize  int
	Creator string
	Content []string
}

// New creates a File.  A nil content becomes an empty file.
func New(name string, kbSize int, creator string, content []string) *File {
	if content == nil {
		content = []string{}
	}
	return &File{Name: name, KBSize: kbSize, Creator: creator, Content: content}
}

// Read returns the file content if username created the file.
func (f *File) Read(username string) ([]string, error) {
	if username != f.Creator {
		return nil, fmt.Errorf("%w: %q cannot read %q", ErrNotCreator, username, f.Name)
	}
	return f.Content, nil
}

// TextFile is a File whose content is lines of text.
type TextFile struct {
	*File
}

// NewTextFile creates a TextFile.
func NewTextFile(name string, kbSize int, creator string, content []string) *TextFile {
	return &TextFile{File: New(name, kbSize, creator, content)}
}

// Count returns the number of lines containing substr.  Each line counts at most once.
func (t *TextFile) Count(substr string) int {
	count := 0
	for _, line := range t.Content {
		if strings.Contains(line, substr) {
			count++
		}
	}
	return count
}

// Load reads the file at path into a TextFile owned by creator.  KBSize is rounded up to whole
// kilobytes.
func Load(path, creator string) (*TextFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%v is a directory", path)
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	kb := int((fi.Size() + 1023) / 1024)
	log.Debug().Str("module", "file").Str("path", path).Int("lines", len(lines)).Msg("Loaded file")

	return NewTextFile(fi.Name(), kb, creator, lines), nil
}
