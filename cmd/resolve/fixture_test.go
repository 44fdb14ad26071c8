package main

import (
	"io"
	"os"
	"testing"

	"github.com/artifactgraph/resolve/resolve"
)

func TestLoadFixtureRepositoryReadDescriptor(t *testing.T) {
	repo, err := loadFixtureRepository("testdata/sample.toml")
	if err != nil {
		t.Fatalf("loadFixtureRepository: %s", err)
	}

	app, _ := resolve.ParseArtifact("com.example:app:1.0")
	desc, err := repo.ReadDescriptor(nil, resolve.ArtifactDescriptorRequest{Artifact: app})
	if err != nil {
		t.Fatalf("ReadDescriptor: %s", err)
	}
	if len(desc.Dependencies) != 1 || desc.Dependencies[0].Artifact().ArtifactID() != "lib" {
		t.Fatalf("expected app -> lib, got %v", desc.Dependencies)
	}

	lib, _ := resolve.ParseArtifact("com.example:lib:1.0")
	libDesc, err := repo.ReadDescriptor(nil, resolve.ArtifactDescriptorRequest{Artifact: lib})
	if err != nil {
		t.Fatalf("ReadDescriptor(lib): %s", err)
	}
	if len(libDesc.Dependencies) != 2 {
		t.Fatalf("expected lib to declare 2 dependencies, got %d", len(libDesc.Dependencies))
	}
	var sawOptional bool
	for _, d := range libDesc.Dependencies {
		if d.Artifact().ArtifactID() == "optional-extra" {
			if v, ok := d.Optional(); !ok || !v {
				t.Errorf("expected optional-extra to be marked optional")
			}
			sawOptional = true
		}
	}
	if !sawOptional {
		t.Error("expected to find optional-extra among lib's dependencies")
	}
}

func TestLoadFixtureRepositoryMissingArtifact(t *testing.T) {
	repo, err := loadFixtureRepository("testdata/sample.toml")
	if err != nil {
		t.Fatalf("loadFixtureRepository: %s", err)
	}
	ghost, _ := resolve.ParseArtifact("com.example:ghost:1.0")
	_, err = repo.ReadDescriptor(nil, resolve.ArtifactDescriptorRequest{Artifact: ghost})
	if _, ok := err.(*resolve.MissingDescriptorError); !ok {
		t.Fatalf("expected *MissingDescriptorError, got %T: %v", err, err)
	}
}

func TestLoadFixtureRepositoryResolveRange(t *testing.T) {
	repo, err := loadFixtureRepository("testdata/sample.toml")
	if err != nil {
		t.Fatalf("loadFixtureRepository: %s", err)
	}
	util, _ := resolve.ParseArtifact("com.example:util:2.0")
	res, err := repo.ResolveRange(nil, resolve.VersionRangeRequest{Artifact: util})
	if err != nil {
		t.Fatalf("ResolveRange: %s", err)
	}
	if len(res.Versions) != 1 || res.Versions[0] != "2.0" {
		t.Fatalf("expected pinned version 2.0, got %v", res.Versions)
	}
}

func TestRunEndToEnd(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %s", err)
	}
	origStdout := os.Stdout
	os.Stdout = w
	runErr := run("testdata/sample.toml", "com.example:app:1.0", "standard", "path", true, true, false)
	w.Close()
	os.Stdout = origStdout
	if runErr != nil {
		t.Fatalf("run: %s", runErr)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %s", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty classpath output")
	}
}
