// Package emberindex implements the directory-index HTML generator
// spec.md §6 lists as a pure-formatting external collaborator: given a
// directory on disk and the path it is displayed under, render a minimal
// directory listing page. Neither the teacher nor any other pack repo
// carries this component; it is grounded on spec.md §4.8's description
// of what the file-serving helper calls it for, not on any teacher file.
package emberindex

import (
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
)

// Renderer renders a directory listing. emberfile.FileServer accepts
// anything satisfying this interface in place of the default.
type Renderer interface {
	Render(dir, displayPath string) (string, error)
}

// HTMLRenderer is the default Renderer: a sorted, unstyled listing of
// entry names, directories suffixed with '/', each linked relative to
// displayPath.
type HTMLRenderer struct{}

// Render implements Renderer.
func (HTMLRenderer) Render(dir, displayPath string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var sb strings.Builder
	sb.WriteString("<html><head><title>Index of ")
	sb.WriteString(html.EscapeString(displayPath))
	sb.WriteString("</title></head><body><h1>Index of ")
	sb.WriteString(html.EscapeString(displayPath))
	sb.WriteString("</h1><ul>")

	if displayPath != "/" {
		sb.WriteString(`<li><a href="../">../</a></li>`)
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		href := name
		label := name
		if e.IsDir() {
			href += "/"
			label += "/"
		}
		sb.WriteString(fmt.Sprintf(`<li><a href="%s">%s</a></li>`, html.EscapeString(href), html.EscapeString(label)))
	}

	sb.WriteString("</ul></body></html>")
	return sb.String(), nil
}
