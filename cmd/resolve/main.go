// Command resolve drives the collector/conflict-resolver engine against a
// TOML repository fixture, for local experimentation and as a smoke test of
// the public API. It is not a production dependency-resolution tool: real
// deployments supply their own DescriptorSource/VersionRangeSource backed by
// an actual repository transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/artifactgraph/resolve/internal/rlog"
	"github.com/artifactgraph/resolve/resolve"
	"github.com/artifactgraph/resolve/resolve/semver"
)

func main() {
	var (
		fixturePath = flag.String("fixture", "", "path to a TOML repository fixture")
		rootCoord   = flag.String("root", "", "root artifact coordinate, e.g. com.example:app:1.0")
		verbosity   = flag.String("verbosity", "none", "conflict resolver verbosity: none, standard, full")
		impl        = flag.String("impl", "path", "conflict resolver implementation: path, classic")
		skip        = flag.Bool("skip-reconcile", false, "enable the skip-and-reconcile optimizer")
		classpath   = flag.Bool("classpath", false, "print the resolved classpath instead of a tree dump")
		verbose     = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if err := run(*fixturePath, *rootCoord, *verbosity, *impl, *skip, *classpath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "resolve:", err)
		os.Exit(1)
	}
}

func run(fixturePath, rootCoord, verbosityFlag, implFlag string, skip, classpath, verbose bool) error {
	if fixturePath == "" || rootCoord == "" {
		return fmt.Errorf("both -fixture and -root are required")
	}

	repo, err := loadFixtureRepository(fixturePath)
	if err != nil {
		return err
	}

	rootArtifact, err := resolve.ParseArtifact(rootCoord)
	if err != nil {
		return err
	}

	pool := resolve.NewDataPool(resolve.PoolStrong)
	session := resolve.NewSession(pool, semver.Scheme{})

	v, err := parseVerbosity(verbosityFlag)
	if err != nil {
		return err
	}
	session.ConflictVerbosity = v

	ci, err := parseImpl(implFlag)
	if err != nil {
		return err
	}
	session.ConflictImpl = ci

	collector := resolve.NewCollector(repo, repo)
	if verbose {
		collector.Logger = rlog.Default()
	}
	if skip {
		collector.Skipper = resolve.NewCachingSkipper()
	}

	req := resolve.CollectRequest{RootArtifact: &rootArtifact}

	result, err := collector.Collect(context.Background(), session, req)
	if err != nil {
		return err
	}

	cfg := resolve.ConflictResolverConfig{}
	var resolver resolve.ConflictResolver
	if session.ConflictImpl == resolve.ConflictImplClassic {
		resolver = resolve.NewClassicConflictResolver(cfg)
	} else {
		resolver = resolve.NewPathConflictResolver(cfg)
	}
	if err := resolver.Resolve(result.Root, session.ConflictVerbosity); err != nil {
		return err
	}

	if classpath {
		list := resolve.PreorderNodes(result.Root, nil)
		fmt.Println(resolve.Classpath(list))
	} else {
		fmt.Print(resolve.NewCycleAwareDumper(nil).Dump(result.Root))
	}

	for _, e := range result.Exceptions {
		fmt.Fprintln(os.Stderr, "resolve: exception:", e)
	}
	for _, c := range result.Cycles {
		fmt.Fprintln(os.Stderr, "resolve: cycle:", c.Artifact)
	}
	return nil
}

func parseVerbosity(s string) (resolve.Verbosity, error) {
	switch s {
	case "none", "":
		return resolve.VerbosityNone, nil
	case "standard":
		return resolve.VerbosityStandard, nil
	case "full":
		return resolve.VerbosityFull, nil
	default:
		return 0, fmt.Errorf("unknown verbosity %q", s)
	}
}

func parseImpl(s string) (resolve.ConflictImpl, error) {
	switch s {
	case "path", "":
		return resolve.ConflictImplPath, nil
	case "classic":
		return resolve.ConflictImplClassic, nil
	default:
		return 0, fmt.Errorf("unknown conflict resolver impl %q", s)
	}
}
