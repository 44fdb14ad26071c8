package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/artifactgraph/resolve/resolve"
)

// fixtureArtifact is one TOML-declared artifact and its direct dependencies,
// the unit the CLI loads a repository fixture from instead of talking to a
// real remote repository (spec §1 Non-goals: transport is an external
// collaborator; this is a stand-in for demonstration and tests).
type fixtureArtifact struct {
	Coordinate   string               `toml:"coordinate"`
	Dependencies []fixtureDependency  `toml:"dependencies"`
	Managed      []fixtureDependency  `toml:"managed"`
}

type fixtureDependency struct {
	Coordinate string `toml:"coordinate"`
	Scope      string `toml:"scope"`
	Optional   bool   `toml:"optional"`
}

type fixtureFile struct {
	Artifacts []fixtureArtifact `toml:"artifacts"`
}

// fixtureRepository is an in-memory DescriptorSource/VersionRangeSource
// loaded from a TOML fixture file, keyed by groupId:artifactId:version
// (classifier/extension default to jar).
type fixtureRepository struct {
	byKey map[string]fixtureArtifact
}

func loadFixtureRepository(path string) (*fixtureRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixtureFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	repo := &fixtureRepository{byKey: make(map[string]fixtureArtifact, len(f.Artifacts))}
	for _, a := range f.Artifacts {
		art, err := resolve.ParseArtifact(a.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("fixture artifact %q: %w", a.Coordinate, err)
		}
		repo.byKey[art.GroupID()+":"+art.ArtifactID()+":"+art.Version()] = a
	}
	return repo, nil
}

func (r *fixtureRepository) lookup(a resolve.Artifact) (fixtureArtifact, bool) {
	v, ok := r.byKey[a.GroupID()+":"+a.ArtifactID()+":"+a.Version()]
	return v, ok
}

func (r *fixtureRepository) ReadDescriptor(session *resolve.Session, req resolve.ArtifactDescriptorRequest) (resolve.ArtifactDescriptor, error) {
	fa, ok := r.lookup(req.Artifact)
	if !ok {
		return resolve.ArtifactDescriptor{}, &resolve.MissingDescriptorError{Artifact: req.Artifact}
	}

	deps := make([]resolve.Dependency, 0, len(fa.Dependencies))
	for _, fd := range fa.Dependencies {
		art, err := resolve.ParseArtifact(fd.Coordinate)
		if err != nil {
			return resolve.ArtifactDescriptor{}, &resolve.InvalidDescriptorError{Artifact: req.Artifact, Cause: err}
		}
		dep := resolve.NewDependency(art, fd.Scope)
		if fd.Optional {
			dep = dep.WithOptional(true)
		}
		deps = append(deps, dep)
	}

	managed := make([]resolve.Dependency, 0, len(fa.Managed))
	for _, fd := range fa.Managed {
		art, err := resolve.ParseArtifact(fd.Coordinate)
		if err != nil {
			return resolve.ArtifactDescriptor{}, &resolve.InvalidDescriptorError{Artifact: req.Artifact, Cause: err}
		}
		managed = append(managed, resolve.NewDependency(art, fd.Scope))
	}

	return resolve.ArtifactDescriptor{
		Artifact:            req.Artifact.WithFile(req.Artifact.GACE() + "@" + req.Artifact.Version()),
		Dependencies:        deps,
		ManagedDependencies: managed,
	}, nil
}

func (r *fixtureRepository) ResolveRange(session *resolve.Session, req resolve.VersionRangeRequest) (resolve.VersionRangeResult, error) {
	v := resolve.Version(req.Artifact.Version())
	return resolve.VersionRangeResult{
		Constraint: resolve.NewRecommendedConstraint(string(v)),
		Versions:   []resolve.Version{v},
	}, nil
}
