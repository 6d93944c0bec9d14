// Package assets stages the files a scene references into the virtual
// filesystem the model loader reads from.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Staging errors.
var (
	// ErrManifest means neither manifest analysis nor the index fallback
	// produced an asset list.
	ErrManifest = errors.New("asset discovery failed")
	// ErrFetch marks a single asset that could not be downloaded.
	ErrFetch = errors.New("asset fetch failed")
)

// DefaultMaxConcurrent bounds parallel fetches when no limit is configured.
const DefaultMaxConcurrent = 8

// Writer is the part of the virtual filesystem the resolver writes to.
// Parent directories are created as needed.
type Writer interface {
	WriteFile(path string, data []byte) error
	WriteText(path, text string) error
}

// Resolver discovers, fetches and stages scene assets.
type Resolver struct {
	Analyzer      ManifestAnalyzer
	Fetcher       Fetcher
	FS            Writer
	Cache         *DownloadCache
	Log           *zap.Logger
	MaxConcurrent int
	// Companions lists files staged with every scene in addition to its
	// manifest, relative to the scene directory.
	Companions func(scene string) []string

	mu sync.Mutex // serializes FS writes
}

// NewResolver creates a resolver that discovers assets with an XMLAnalyzer
// over the same fetcher. A nil cache gets a private one.
func NewResolver(f Fetcher, w Writer, cache *DownloadCache, log *zap.Logger) *Resolver {
	if cache == nil {
		cache = NewDownloadCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		Analyzer:      NewXMLAnalyzer(f),
		Fetcher:       f,
		FS:            w,
		Cache:         cache,
		Log:           log,
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

// Report summarizes one staging batch.
type Report struct {
	Scene   string
	Written []string
	Failed  []string
}

// Stage makes sure every asset of scenePath is present in the filesystem.
// Concurrent calls for the same scene share one batch; a scene that staged
// successfully is not fetched again.
func (r *Resolver) Stage(ctx context.Context, scenePath string) error {
	_, err := r.StageReport(ctx, scenePath)
	return err
}

// StageReport is Stage returning the batch report. The report is nil when
// the scene was already staged or another caller ran the batch.
func (r *Resolver) StageReport(ctx context.Context, scenePath string) (*Report, error) {
	key := Normalize(scenePath)
	if key == "" {
		return nil, fmt.Errorf("%w: empty scene path %q", ErrManifest, scenePath)
	}

	var rep *Report
	err := r.Cache.Do(key, func() error {
		var err error
		// the batch is shared; one caller's cancellation must not fail the rest
		rep, err = r.stage(context.WithoutCancel(ctx), key)
		return err
	})
	return rep, err
}

func (r *Resolver) stage(ctx context.Context, scene string) (*Report, error) {
	log := r.Log.With(zap.String("scene", scene))
	dir := path.Dir(scene)

	entries, err := r.discover(ctx, scene, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifest, scene, err)
	}
	if r.Companions != nil {
		entries = append(entries, r.Companions(scene)...)
	}
	plan := Plan(scene, entries)
	log.Debug("staging assets", zap.Int("count", len(plan)))

	rep := &Report{Scene: scene}
	var repMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := r.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	g.SetLimit(limit)

	for _, p := range plan {
		p := p
		g.Go(func() error {
			err := r.stageOne(gctx, p)
			repMu.Lock()
			defer repMu.Unlock()
			if err != nil {
				rep.Failed = append(rep.Failed, p)
				log.Warn("asset skipped", zap.String("path", p), zap.Error(err))
				return nil
			}
			rep.Written = append(rep.Written, p)
			return nil
		})
	}
	// per-asset errors are contained, so Wait only reports nil
	_ = g.Wait()

	log.Info("assets staged",
		zap.Int("written", len(rep.Written)),
		zap.Int("failed", len(rep.Failed)))
	return rep, nil
}

func (r *Resolver) stageOne(ctx context.Context, p string) error {
	data, err := r.Fetcher.Fetch(ctx, p)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if IsBinary(p, data) {
		if err := r.FS.WriteFile(p, data); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
		return nil
	}

	text, err := DecodeText(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", p, err)
	}
	if err := r.FS.WriteText(p, text); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// discover asks the analyzer for the asset list and falls back to the
// index file beside the scene when analysis fails, panics or finds nothing.
func (r *Resolver) discover(ctx context.Context, scene, dir string) ([]string, error) {
	list, aerr := r.analyze(ctx, scene)
	if aerr == nil && len(list) > 0 {
		return list, nil
	}
	if aerr == nil {
		aerr = errors.New("no assets found")
	}
	r.Log.Warn("manifest analysis failed, using index",
		zap.String("scene", scene), zap.Error(aerr))

	index := path.Join(dir, IndexFile)
	list, ierr := r.index(ctx, index)
	if ierr == nil {
		return list, nil
	}
	return nil, multierr.Combine(
		fmt.Errorf("analyzing %s: %w", scene, aerr),
		fmt.Errorf("reading %s: %w", index, ierr),
	)
}

func (r *Resolver) analyze(ctx context.Context, scene string) (list []string, err error) {
	if r.Analyzer == nil {
		return nil, errors.New("no manifest analyzer")
	}
	defer func() {
		if v := recover(); v != nil {
			list, err = nil, fmt.Errorf("analyzer panic: %v", v)
		}
	}()
	return r.Analyzer.Analyze(ctx, scene)
}

func (r *Resolver) index(ctx context.Context, p string) ([]string, error) {
	data, err := r.Fetcher.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	return ParseIndex(data)
}

// Plan turns manifest entries, relative to the scene directory, into the
// ordered list of normalized paths to fetch. Remote URLs, entries escaping
// the root and duplicates are dropped. The scene itself always comes first.
func Plan(scene string, entries []string) []string {
	scene = Normalize(scene)
	dir := path.Dir(scene)

	seen := map[string]bool{scene: true}
	out := []string{scene}
	for _, e := range entries {
		if e == "" || IsRemote(e) {
			continue
		}
		p := Normalize(path.Join(dir, stripPrefixes(e)))
		if p == "" || p == ".." || strings.HasPrefix(p, "../") || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Normalize strips "./" and "public/" prefixes, resolves "." and ".."
// segments and removes any leading slash.
func Normalize(p string) string {
	p = strings.TrimLeft(stripPrefixes(p), "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return stripPrefixes(p)
}

func stripPrefixes(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "public/"):
			p = p[len("public/"):]
		default:
			return p
		}
	}
}

// IsRemote reports whether p is an absolute URL rather than an asset path.
func IsRemote(p string) bool {
	l := strings.ToLower(p)
	for _, prefix := range []string{"http://", "https://", "//", "data:"} {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
