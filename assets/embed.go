// Package assets embeds the default word lists so the solver runs without any
// files on disk.
package assets

import (
	"embed"
	"io"
)

const (
	AnswersFile = "answers.txt"
	AllowedFile = "allowed.txt"
)

//go:embed answers.txt allowed.txt
var FS embed.FS

// Open returns a reader over one of the embedded lists.
func Open(name string) (io.ReadCloser, error) {
	return FS.Open(name)
}
