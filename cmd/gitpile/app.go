package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gitpile/gitpile/internal/config"
	"github.com/gitpile/gitpile/internal/errors"
	"github.com/gitpile/gitpile/internal/git"
	"github.com/gitpile/gitpile/internal/logger"
	"github.com/gitpile/gitpile/internal/pile"
)

const usageText = `usage: gitpile <command> [options]

Manage a pile of patches on top of a git branch.

Commands:
  init          Initialize pile configuration in this repository
  genpatches    Generate the patch series from a commit range
  genbranch     Rebuild the result branch from the patch series
  format-patch  Extract the patches changed since the recorded pile state
  destroy       Remove the pile configuration

Run 'gitpile <command> -h' for command options.`

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App wires the subcommands to their dependencies. Every dependency is
// injectable so tests can capture output and substitute backends.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Logger overrides the per-command logger when set.
	Logger logger.Logger

	// OpenBackend opens the repository containing the given path.
	OpenBackend func(path string) (*git.Backend, error)

	// WorkDir is where repository discovery starts.
	WorkDir string

	versionInfo VersionInfo
}

// NewDefaultApp creates an App with standard dependencies.
func NewDefaultApp(versionInfo VersionInfo) *App {
	return &App{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		OpenBackend: git.Open,
		WorkDir:     ".",
		versionInfo: versionInfo,
	}
}

// Run dispatches a subcommand and returns the process exit code: 0 on
// success, 1 on any fatal error. Diagnostics go to stderr, result
// artifacts to stdout.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(a.Stderr, usageText)
		return 1
	}

	var err error
	switch args[0] {
	case "init":
		err = a.cmdInit(args[1:])
	case "genpatches":
		err = a.cmdGenpatches(args[1:])
	case "genbranch":
		err = a.cmdGenbranch(args[1:])
	case "format-patch":
		err = a.cmdFormatPatch(args[1:])
	case "destroy":
		err = a.cmdDestroy(args[1:])
	case "version", "-version", "--version":
		a.showVersion()
		return 0
	case "help", "-h", "-help", "--help":
		_, _ = fmt.Fprintln(a.Stdout, usageText)
		return 0
	default:
		_, _ = fmt.Fprintf(a.Stderr, "unknown command %q\n%s\n", args[0], usageText)
		return 1
	}

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintf(a.Stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *App) showVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "gitpile %s (%s) built on %s\n",
		a.versionInfo.Version, a.versionInfo.Commit, a.versionInfo.Date)
}

// logger returns the injected logger or builds one writing to the app's
// streams.
func (a *App) log(verbose bool) logger.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logger.NewWithOutput(false, "", verbose, a.Stdout, a.Stderr)
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// openInitialized opens the repository and loads the pile configuration,
// failing before any mutation when the pile is not initialized.
func (a *App) openInitialized() (*git.Backend, *config.Config, error) {
	backend, err := a.OpenBackend(a.WorkDir)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(backend)
	if err != nil {
		return nil, nil, err
	}
	return backend, cfg, nil
}

func (a *App) cmdInit(args []string) error {
	fs := a.flagSet("init")
	dir := fs.String("d", config.DefaultDir, "directory in which to place patches")
	branch := fs.String("b", config.DefaultBranch, "branch name to use for patches")
	tracking := fs.String("t", config.DefaultTrackingBranch, "base branch on top of which patches apply")
	remote := fs.String("r", "", "remote branch to which patches will be pushed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, err := a.OpenBackend(a.WorkDir)
	if err != nil {
		return err
	}

	settings := map[string]string{
		"pile." + config.KeyDir:            *dir,
		"pile." + config.KeyBranch:         *branch,
		"pile." + config.KeyTrackingBranch: *tracking,
	}
	if *remote != "" {
		settings["pile."+config.KeyRemoteBranch] = *remote
	}
	for _, key := range []string{
		"pile." + config.KeyDir,
		"pile." + config.KeyBranch,
		"pile." + config.KeyTrackingBranch,
		"pile." + config.KeyRemoteBranch,
	} {
		value, ok := settings[key]
		if !ok {
			continue
		}
		if err := backend.SetConfig(key, value); err != nil {
			return err
		}
	}

	cfg, err := config.Load(backend)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.Stdout, "dir=%s\nbranch=%s\nremote-branch=%s\ntracking-branch=%s\n",
		cfg.Dir, cfg.Branch, cfg.RemoteBranch, cfg.TrackingBranch)
	return nil
}

func (a *App) cmdGenpatches(args []string) error {
	fs := a.flagSet("genpatches")
	out := fs.String("o", "", "output directory (default: the configured pile directory)")
	force := fs.Bool("f", false, "allow generating into a non-empty directory that is not yet a pile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, cfg, err := a.openInitialized()
	if err != nil {
		return err
	}
	lg := a.log(false)

	outDir := *out
	if outDir == "" {
		outDir = filepath.Join(backend.RepoPath(), cfg.Dir)
	}

	rng, err := git.ResolveRange(backend, fs.Arg(0), cfg.TrackingBranch, "HEAD")
	if err != nil {
		return err
	}

	if !*force {
		if err := refuseForeignDir(outDir); err != nil {
			return err
		}
	}

	gen := &pile.Generator{Backend: backend, Logger: lg}
	res, err := gen.Generate(rng, outDir)
	if err != nil {
		return err
	}

	lg.Success("generated %d patches for %s into %s", len(res.Names), rng.Spec(), outDir)
	return nil
}

func (a *App) cmdGenbranch(args []string) error {
	fs := a.flagSet("genbranch")
	branchFlag := fs.String("b", "", "result branch to update (default: pile.result-branch, else the current branch)")
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, cfg, err := a.openInitialized()
	if err != nil {
		return err
	}
	lg := a.log(*verbose)

	branch := *branchFlag
	if branch == "" {
		branch = cfg.ResultBranch
	}
	if branch == "" {
		branch, err = backend.CurrentBranch()
		if err != nil {
			return err
		}
		if branch == "" {
			return errors.New("HEAD is detached; select a result branch with -b")
		}
	}

	p := pile.New(filepath.Join(backend.RepoPath(), cfg.Dir))
	rec := &pile.Reconstructor{Backend: backend, Logger: lg}
	outcome, err := rec.Reconstruct(p, cfg.TrackingBranch, branch)
	if err != nil {
		return err
	}

	lg.Success("branch %s now at %s", outcome.Branch, outcome.Head.Short())
	return nil
}

func (a *App) cmdFormatPatch(args []string) error {
	fs := a.flagSet("format-patch")
	out := fs.String("o", ".", "output directory for the extracted patches")
	force := fs.Bool("f", false, "overwrite a previously extracted set in the output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, cfg, err := a.openInitialized()
	if err != nil {
		return err
	}
	lg := a.log(false)

	rng, err := git.ResolveRange(backend, fs.Arg(0), cfg.TrackingBranch, "HEAD")
	if err != nil {
		return err
	}

	if !*force {
		if _, err := os.Stat(filepath.Join(*out, pile.CoverFile)); err == nil {
			return errors.Errorf("%s already contains an extracted set; use -f to overwrite", *out)
		}
	}

	ext := &pile.Extractor{Backend: backend, Logger: lg}
	res, err := ext.Extract(rng, cfg.Branch, *out)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(a.Stdout, res.CoverPath)
	for _, path := range res.PatchPaths {
		_, _ = fmt.Fprintln(a.Stdout, path)
	}
	return nil
}

func (a *App) cmdDestroy(args []string) error {
	fs := a.flagSet("destroy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, err := a.OpenBackend(a.WorkDir)
	if err != nil {
		return err
	}
	lg := a.log(false)

	values, err := backend.ConfigSection("pile")
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.Wrap(errors.ErrNotInitialized, "nothing to destroy")
	}

	if err := backend.RemoveConfigSection("pile"); err != nil {
		return err
	}

	// Only the configuration is removed here; branches and the pile
	// directory belong to the operator.
	lg.InfoToUser("pile configuration removed")
	if dir := values[config.KeyDir]; dir != "" {
		lg.InfoToUser("pile directory %q left in place", dir)
	}
	if branch := values[config.KeyBranch]; branch != "" {
		lg.InfoToUser("pile branch %q left in place", branch)
	}
	return nil
}

// refuseForeignDir guards against clobbering a non-empty directory that
// was never a pile.
func refuseForeignDir(dir string) error {
	if pile.New(dir).Exists() {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) > 0 {
		return errors.Errorf("%s is not a pile and not empty; use -f to generate into it anyway", dir)
	}
	return nil
}
