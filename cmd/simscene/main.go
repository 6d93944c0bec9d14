// simscene stages simulation scenes and assembles their render scene graph.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/assets"
	"github.com/Faultbox/simscene/internal/config"
	"github.com/Faultbox/simscene/internal/engine/debug"
	"github.com/Faultbox/simscene/internal/engine/scene"
	"github.com/Faultbox/simscene/internal/logger"
	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/internal/vfs"
	"github.com/Faultbox/simscene/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.LoggerOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	var cmdErr error
	switch command {
	case "stage":
		cmdErr = cmdStage(cfg, args)
	case "build":
		cmdErr = cmdBuild(cfg, args)
	case "textures":
		cmdErr = cmdTextures(cfg, args)
	case "info":
		cmdErr = cmdInfo(args)
	case "config":
		cmdErr = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if cmdErr != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`simscene - simulation scene staging and assembly

Usage:
  simscene [flags] <command> [options]

Flags:
  -config <file>        Config file
  -debug                Debug logging
  -base-url <url|dir>   Where assets are fetched from (env SIMSCENE_BASE_URL)
  -recompute-normals    Rebuild smoothed mesh normals

Commands:
  stage <scene.xml>              Fetch scene assets and list them
  build <scene.xml>              Stage and build the scene, print a summary
  textures <scene.xml> [outdir]  Dump decoded textures as PNG or BMP
  info <model.smdl>              Show compiled model sections
  config [file]                  Write the effective config as YAML

Examples:
  simscene -base-url https://example.com/assets stage robots/arm/scene.xml
  simscene -base-url ./public build robots/arm/scene.xml
  simscene textures -format bmp robots/arm/scene.xml ./out`)
}

// session wires the resolver, staging filesystem and loader for one run.
type session struct {
	cfg      *config.Config
	fs       *vfs.FS
	resolver *assets.Resolver
	loader   *physics.FileLoader
}

func newSession(cfg *config.Config) (*session, error) {
	v, err := vfs.New()
	if err != nil {
		return nil, err
	}
	fetcher := assets.NewFetcher(cfg.Assets.BaseURL, cfg.Assets.Timeout, cfg.Assets.UserAgent)

	r := assets.NewResolver(fetcher, v, assets.NewDownloadCache(), logger.Named("assets"))
	r.MaxConcurrent = cfg.Assets.MaxConcurrent
	r.Companions = func(scene string) []string {
		return []string{path.Base(physics.CompiledPath(scene))}
	}

	return &session{
		cfg:      cfg,
		fs:       v,
		resolver: r,
		loader:   physics.NewFileLoader(v, logger.Named("physics")),
	}, nil
}

func (s *session) build(scenePath string, dst *scene.Destination) (*scene.Result, error) {
	if err := s.resolver.Stage(context.Background(), scenePath); err != nil {
		return nil, err
	}
	opts, err := s.cfg.SceneOptions()
	if err != nil {
		return nil, err
	}
	rt := scene.Runtime{FS: s.fs, Loader: s.loader, Log: logger.Named("scene")}
	return scene.Build(rt, assets.Normalize(scenePath), dst, opts)
}

func cmdStage(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: simscene stage <scene.xml>")
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	rep, err := s.resolver.StageReport(context.Background(), args[0])
	if err != nil {
		return err
	}
	for _, p := range rep.Written {
		fmt.Printf("  %s\n", p)
	}
	for _, p := range rep.Failed {
		fmt.Printf("  %s (failed)\n", p)
	}
	fmt.Printf("Staged %d files, %d failed\n", len(rep.Written), len(rep.Failed))
	return nil
}

func cmdBuild(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	bounds := fs.Bool("bounds", false, "Fill the line batch with mesh bounding boxes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: simscene build [-bounds] <scene.xml>")
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	var dst scene.Destination
	defer dst.Release()

	res, err := s.build(fs.Arg(0), &dst)
	if err != nil {
		return err
	}
	if *bounds {
		n := debug.OverlayBounds(res.Graph, 0.01, [4]float32{1, 1, 0, 1})
		logger.Info("bounds overlay", zap.Int("boxes", n))
	}

	fmt.Printf("Scene: %s\n", fs.Arg(0))
	fmt.Print(debug.Summarize(res.Graph))
	if res.Skipped > 0 {
		fmt.Printf("skipped:    %d geometries\n", res.Skipped)
	}

	ids := make([]int, 0, len(res.Bodies))
	for id := range res.Bodies {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fmt.Println()
	fmt.Println("Bodies:")
	for _, id := range ids {
		b := res.Bodies[id]
		fmt.Printf("  %3d %-24s parent=%d meshes=%d\n", id, b.Name, b.Parent, len(b.Node.Children))
	}
	return nil
}

func cmdTextures(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	format := fs.String("format", cfg.Export.TextureFormat, "Image format: png or bmp")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: simscene textures [-format png|bmp] <scene.xml> [outdir]")
	}
	outDir := cfg.Export.OutputDir
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}
	f, err := debug.ParseFormat(*format)
	if err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	var dst scene.Destination
	defer dst.Release()

	res, err := s.build(fs.Arg(0), &dst)
	if err != nil {
		return err
	}

	paths, err := debug.NewTextureDump(outDir, "texture", f).Dump(res.Textures)
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("Wrote %d textures\n", len(paths))
	return err
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: simscene info <model.smdl>")
	}
	mf, err := formats.LoadModelFile(args[0])
	if err != nil {
		return err
	}
	tables, err := physics.FromModelFile(mf)
	if err != nil {
		return err
	}

	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Version:   %s\n", mf.Version)
	fmt.Printf("Bodies:    %d\n", tables.Body.Len())
	fmt.Printf("Geoms:     %d\n", tables.Geom.Len())
	fmt.Printf("Meshes:    %d\n", tables.Mesh.Len())
	fmt.Printf("Materials: %d\n", tables.Material.Len())
	fmt.Printf("Textures:  %d\n", tables.Texture.Len())
	fmt.Printf("Lights:    %d\n", tables.Light.Len())
	fmt.Println()
	fmt.Println("Sections:")

	names := make([]string, 0, len(mf.Sections))
	for name := range mf.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sec := mf.Sections[name]
		fmt.Printf("  %-20s %-8s %d\n", name, sec.Kind, sec.Len())
	}
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	path, err := cfg.Save()
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
