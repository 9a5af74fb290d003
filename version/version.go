package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built software's version.
	Version string = SemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

// SemVer is the current version of the verifier.
const SemVer = "0.1.0"
