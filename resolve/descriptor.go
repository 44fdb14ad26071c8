package resolve

// Relocation records that the descriptor source resolved artifact to a
// different coordinate than was requested (e.g. an org rename).
type Relocation struct {
	From    Artifact
	To      Artifact
	Message string
}

// ArtifactDescriptor is the result of a descriptor fetch: the artifact
// (after relocation, if any), the relocation chain that produced it, any
// aliases, its direct dependencies, its managed-dependency list, and any
// repositories it contributes beyond the ones it was requested against.
// Collections are never nil (spec §3).
type ArtifactDescriptor struct {
	Artifact          Artifact
	Relocations       []Relocation
	Aliases           []Artifact
	Dependencies      []Dependency
	ManagedDependencies []Dependency
	Repositories      []RemoteRepository
}

// emptyDescriptor returns the canonical "no information" stub for artifact:
// no dependencies, no management, no relocations. Per spec §7 this is what a
// demoted descriptor-missing/-invalid failure substitutes when the session
// is configured to ignore such failures.
func emptyDescriptor(a Artifact) ArtifactDescriptor {
	return ArtifactDescriptor{Artifact: a}
}

// ArtifactDescriptorRequest is the input to a DescriptorSource.
type ArtifactDescriptorRequest struct {
	Artifact     Artifact
	Repositories []RemoteRepository
	Trace        interface{}
}

// DescriptorSource is the external collaborator that produces an
// ArtifactDescriptor for a coordinate (spec §6). It is out of scope for this
// module's core: real implementations talk to a repository transport.
type DescriptorSource interface {
	ReadDescriptor(session *Session, req ArtifactDescriptorRequest) (ArtifactDescriptor, error)
}

// VersionRangeRequest is the input to a VersionRangeSource.
type VersionRangeRequest struct {
	Artifact     Artifact
	Repositories []RemoteRepository
	Trace        interface{}
}

// VersionRangeSource is the external collaborator that resolves a version
// constraint to a concrete ordered list of candidate versions (spec §6).
type VersionRangeSource interface {
	ResolveRange(session *Session, req VersionRangeRequest) (VersionRangeResult, error)
}
