package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Properties is an immutable string-keyed bag of metadata attached to an
// Artifact. Zero value is a valid, empty Properties.
type Properties struct {
	m map[string]string
}

// NewProperties builds a Properties from a plain map, taking a defensive copy.
func NewProperties(m map[string]string) Properties {
	if len(m) == 0 {
		return Properties{}
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Properties{m: cp}
}

// Get returns the value for key and whether it was present.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p.m[key]
	return v, ok
}

// GetOr returns the value for key, or def if absent.
func (p Properties) GetOr(key, def string) string {
	if v, ok := p.m[key]; ok {
		return v
	}
	return def
}

// With returns a new Properties with key set to value, leaving the receiver
// untouched. If the value is unchanged, the receiver is returned as-is.
func (p Properties) With(key, value string) Properties {
	if v, ok := p.m[key]; ok && v == value {
		return p
	}
	cp := make(map[string]string, len(p.m)+1)
	for k, v := range p.m {
		cp[k] = v
	}
	cp[key] = value
	return Properties{m: cp}
}

// Equal reports whether p and o carry the same key/value pairs.
func (p Properties) Equal(o Properties) bool {
	if len(p.m) != len(o.m) {
		return false
	}
	for k, v := range p.m {
		if ov, ok := o.m[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// sortedKey returns a deterministic string encoding the property set, used
// when properties participate in a cache or intern key.
func (p Properties) sortedKey() string {
	if len(p.m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p.m))
	for k := range p.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.m[k])
		b.WriteByte(';')
	}
	return b.String()
}

// ArtifactType describes the extension/classifier/language defaults of an
// artifact type (spec §4.1). Types are only registered and looked up here:
// no constructor in this package applies a type's defaults to an Artifact or
// merges them into its Properties.
type ArtifactType struct {
	ID                   string
	Extension            string
	Classifier           string
	Language             string
	IncludesDependencies bool
	BuildPath            bool
}

var artifactTypes = map[string]ArtifactType{
	"jar": {ID: "jar", Extension: "jar", Language: "java"},
	"pom": {ID: "pom", Extension: "pom", Language: "none"},
	"test-jar": {
		ID: "test-jar", Extension: "jar", Classifier: "tests", Language: "java",
	},
}

// RegisterType adds or replaces an ArtifactType in the process-wide registry.
// The registry is an immutable-singleton-style convenience, not a cache;
// callers typically register types once at startup.
func RegisterType(t ArtifactType) {
	artifactTypes[t.ID] = t
}

// LookupType returns a registered ArtifactType by id.
func LookupType(id string) (ArtifactType, bool) {
	t, ok := artifactTypes[id]
	return t, ok
}

// Artifact is an immutable Maven-style coordinate, optionally bound to a
// resolved file path. Equality is over every coordinate field plus
// Properties; two Artifacts with identical fields are interchangeable.
type Artifact struct {
	groupID     string
	artifactID  string
	version     string
	baseVersion string
	classifier  string
	extension   string
	props       Properties
	file        string
}

// NewArtifact builds an Artifact, defaulting an empty extension to "jar".
// No ArtifactType is consulted.
func NewArtifact(groupID, artifactID, extension, classifier, version string) Artifact {
	a := Artifact{
		groupID:    groupID,
		artifactID: artifactID,
		extension:  extension,
		classifier: classifier,
		version:    version,
	}
	if a.extension == "" {
		a.extension = "jar"
	}
	a.baseVersion = baseVersionOf(version)
	return a
}

// timestampedSnapshot matches a deployed snapshot's unique timestamped
// qualifier, e.g. "1.0-20210101.120000-1", replacing it with the declared
// "-SNAPSHOT" base the project requested.
var timestampedSnapshot = regexp.MustCompile(`-\d{8}\.\d{6}-\d+$`)

// baseVersionOf strips a SNAPSHOT-style timestamped qualifier down to its
// declared base; absent that convention, version and baseVersion coincide.
func baseVersionOf(version string) string {
	if loc := timestampedSnapshot.FindStringIndex(version); loc != nil {
		return version[:loc[0]] + "-SNAPSHOT"
	}
	return version
}

func (a Artifact) GroupID() string     { return a.groupID }
func (a Artifact) ArtifactID() string  { return a.artifactID }
func (a Artifact) Version() string     { return a.version }
func (a Artifact) BaseVersion() string { return a.baseVersion }
func (a Artifact) Classifier() string  { return a.classifier }
func (a Artifact) Extension() string   { return a.extension }
func (a Artifact) File() string        { return a.file }
func (a Artifact) Properties() Properties { return a.props }

func (a Artifact) HasFile() bool { return a.file != "" }

// GACE returns the conflict-group identity of the artifact: group, artifact,
// classifier, extension -- version is intentionally excluded.
func (a Artifact) GACE() string {
	return a.groupID + ":" + a.artifactID + ":" + a.classifier + ":" + a.extension
}

// WithVersion returns the same Artifact if version is unchanged, else a copy
// with the new version (and recomputed base version).
func (a Artifact) WithVersion(version string) Artifact {
	if a.version == version {
		return a
	}
	na := a
	na.version = version
	na.baseVersion = baseVersionOf(version)
	return na
}

// WithFile returns the same Artifact if file is unchanged, else a copy bound
// to the given resolved path.
func (a Artifact) WithFile(file string) Artifact {
	if a.file == file {
		return a
	}
	na := a
	na.file = file
	return na
}

// WithProperties returns a copy of a with its properties defensively
// replaced by a copy of props.
func (a Artifact) WithProperties(props map[string]string) Artifact {
	na := a
	na.props = NewProperties(props)
	return na
}

// WithClassifier returns the same Artifact if classifier is unchanged, else
// a copy with the new classifier.
func (a Artifact) WithClassifier(classifier string) Artifact {
	if a.classifier == classifier {
		return a
	}
	na := a
	na.classifier = classifier
	return na
}

// WithExtension returns the same Artifact if extension is unchanged, else a
// copy with the new extension.
func (a Artifact) WithExtension(extension string) Artifact {
	if a.extension == extension {
		return a
	}
	na := a
	na.extension = extension
	return na
}

// Equal reports coordinate+properties equality, per spec §3.
func (a Artifact) Equal(o Artifact) bool {
	return a.groupID == o.groupID &&
		a.artifactID == o.artifactID &&
		a.version == o.version &&
		a.classifier == o.classifier &&
		a.extension == o.extension &&
		a.props.Equal(o.props)
}

// internKey returns a string uniquely identifying the artifact for pool
// interning purposes.
func (a Artifact) internKey() string {
	return a.groupID + ":" + a.artifactID + ":" + a.extension + ":" + a.classifier + ":" + a.version + "|" + a.props.sortedKey()
}

// String renders the canonical coordinate form g:a:e:c:v, omitting the
// extension/classifier segments when they carry their defaults, matching
// ParseArtifact's accepted shorthands.
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.groupID)
	b.WriteByte(':')
	b.WriteString(a.artifactID)
	if a.extension != "jar" || a.classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.extension)
		if a.classifier != "" {
			b.WriteByte(':')
			b.WriteString(a.classifier)
		}
	}
	b.WriteByte(':')
	b.WriteString(a.version)
	return b.String()
}

// ErrInvalidCoordinate is returned by ParseArtifact for malformed input.
type ErrInvalidCoordinate struct {
	Input string
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid-coordinate: %q is not a valid artifact coordinate", e.Input)
}

// ParseArtifact parses the string form described in spec §4.1:
//
//	g:a:v             -> extension=jar, classifier=""
//	g:a:e:v           -> classifier=""
//	g:a:e:c:v         -> empty e defaults to jar
func ParseArtifact(s string) (Artifact, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return NewArtifact(parts[0], parts[1], "jar", "", parts[2]), nil
	case 4:
		ext := parts[2]
		if ext == "" {
			ext = "jar"
		}
		return NewArtifact(parts[0], parts[1], ext, "", parts[3]), nil
	case 5:
		ext := parts[2]
		if ext == "" {
			ext = "jar"
		}
		return NewArtifact(parts[0], parts[1], ext, parts[3], parts[4]), nil
	default:
		return Artifact{}, &ErrInvalidCoordinate{Input: s}
	}
}
