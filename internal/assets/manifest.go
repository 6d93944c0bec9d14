package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// ManifestAnalyzer lists the assets a scene references. Paths are relative
// to the scene directory.
type ManifestAnalyzer interface {
	Analyze(ctx context.Context, scenePath string) ([]string, error)
}

// IndexFile is the fallback manifest looked up beside a scene.
const IndexFile = "index.json"

// maxIncludeDepth bounds <include> recursion.
const maxIncludeDepth = 16

// XMLAnalyzer reads scene XML and collects its file references. It honours
// the <compiler> meshdir, texturedir and assetdir attributes and follows
// <include file=...> elements.
type XMLAnalyzer struct {
	Fetcher Fetcher
}

// NewXMLAnalyzer creates an analyzer reading scene files through f.
func NewXMLAnalyzer(f Fetcher) *XMLAnalyzer {
	return &XMLAnalyzer{Fetcher: f}
}

type xmlScan struct {
	ctx     context.Context
	fetcher Fetcher
	root    string

	meshDir, textureDir, assetDir string

	seen     map[string]bool
	included map[string]bool
	out      []string
}

// Analyze implements ManifestAnalyzer.
func (a *XMLAnalyzer) Analyze(ctx context.Context, scenePath string) ([]string, error) {
	if a.Fetcher == nil {
		return nil, errors.New("xml analyzer has no fetcher")
	}
	s := &xmlScan{
		ctx:      ctx,
		fetcher:  a.Fetcher,
		root:     path.Dir(scenePath),
		seen:     make(map[string]bool),
		included: make(map[string]bool),
	}
	if err := s.file(scenePath, 0); err != nil {
		return nil, err
	}
	return s.out, nil
}

func (s *xmlScan) add(rel string) {
	if rel == "" || s.seen[rel] {
		return
	}
	s.seen[rel] = true
	s.out = append(s.out, rel)
}

func (s *xmlScan) file(p string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("include depth exceeded at %s", p)
	}
	data, err := s.fetcher.Fetch(s.ctx, p)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", p, err)
	}

	l := xml.NewLexer(parse.NewInput(bytes.NewReader(data)))
	var tag string
	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return fmt.Errorf("parsing %s: %w", p, err)
			}
			return nil
		case xml.StartTagToken:
			tag = strings.ToLower(string(l.Text()))
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			tag = ""
		case xml.AttributeToken:
			name := strings.ToLower(string(l.Text()))
			val := strings.Trim(string(l.AttrVal()), `"'`)
			if err := s.attribute(tag, name, val, depth); err != nil {
				return err
			}
		}
	}
}

func (s *xmlScan) attribute(tag, name, val string, depth int) error {
	if val == "" {
		return nil
	}

	if tag == "compiler" {
		switch name {
		case "meshdir":
			s.meshDir = val
		case "texturedir":
			s.textureDir = val
		case "assetdir":
			s.assetDir = val
		}
		return nil
	}

	if !strings.HasPrefix(name, "file") {
		return nil
	}

	switch tag {
	case "include":
		s.add(val)
		if IsRemote(val) || s.included[val] {
			return nil
		}
		s.included[val] = true
		return s.file(path.Join(s.root, val), depth+1)
	case "mesh", "hfield", "skin":
		s.add(joinDir(s.dirOr(s.meshDir), val))
	case "texture":
		s.add(joinDir(s.dirOr(s.textureDir), val))
	default:
		if name == "file" {
			s.add(joinDir(s.assetDir, val))
		}
	}
	return nil
}

func (s *xmlScan) dirOr(dir string) string {
	if dir != "" {
		return dir
	}
	return s.assetDir
}

func joinDir(dir, file string) string {
	if dir == "" || IsRemote(file) || strings.HasPrefix(file, "/") {
		return file
	}
	return path.Join(dir, file)
}

// ParseIndex reads an index.json manifest: either a JSON array of paths or
// an object carrying them under "assets" or "files".
func ParseIndex(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var obj struct {
		Assets []string `json:"assets"`
		Files  []string `json:"files"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if obj.Assets == nil && obj.Files == nil {
		return nil, errors.New("index has neither assets nor files")
	}
	return append(obj.Assets, obj.Files...), nil
}
