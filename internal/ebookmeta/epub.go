package ebookmeta

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const (
	containerPath = "META-INF/container.xml"
	maxOPFSize    = 4 << 20
)

var errNoPackage = errors.New("epub has no package document")

// EPUBReader reads the OPF package document of an EPUB.
type EPUBReader struct{}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage is the subset of an OPF document we read. Element names match
// regardless of the dc: namespace prefix.
type opfPackage struct {
	Metadata struct {
		Titles       []string `xml:"title"`
		Creators     []string `xml:"creator"`
		Subjects     []string `xml:"subject"`
		Descriptions []string `xml:"description"`
		Publishers   []string `xml:"publisher"`
		Languages    []string `xml:"language"`
		Dates        []string `xml:"date"`
	} `xml:"metadata"`
}

// Read implements Reader.
func (EPUBReader) Read(ctx context.Context, p string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer zr.Close()

	opfPath, err := rootfile(&zr.Reader)
	if err != nil {
		return nil, err
	}

	var pkg opfPackage
	if err := decodeEntry(&zr.Reader, opfPath, &pkg); err != nil {
		return nil, fmt.Errorf("read %s: %w", opfPath, err)
	}

	md := pkg.Metadata
	return &Metadata{
		Title:       first(md.Titles),
		Author:      first(md.Creators),
		Subjects:    nonBlank(md.Subjects),
		Description: htmlToMarkdown(first(md.Descriptions)),
		Publisher:   first(md.Publishers),
		Language:    first(md.Languages),
		Date:        first(md.Dates),
	}, nil
}

// rootfile finds the OPF path via the container, falling back to the first
// .opf entry in the archive.
func rootfile(zr *zip.Reader) (string, error) {
	var c container
	if err := decodeEntry(zr, containerPath, &c); err == nil {
		for _, rf := range c.Rootfiles {
			if rf.FullPath != "" {
				return path.Clean(rf.FullPath), nil
			}
		}
	}
	for _, f := range zr.File {
		if strings.EqualFold(path.Ext(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", errNoPackage
}

func decodeEntry(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(io.LimitReader(f, maxOPFSize))
	// OPF files in the wild declare all sorts of encodings; the text we
	// read is ASCII-compatible in practice.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	return dec.Decode(v)
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// htmlToMarkdown converts HTML descriptions to Markdown and leaves plain
// text alone.
func htmlToMarkdown(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
