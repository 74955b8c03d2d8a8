package ledger

// Version of the ledger. Release builds set it with
//   -ldflags "-X github.com/alium-swap/ledger.version=v1.2.3"
var version = "v0.1.0-dev"

// GitCommit is set with -ldflags as well.
var GitCommit = ""

// Version returns the version followed by the commit, when known.
func Version() string {
	if GitCommit == "" {
		return version
	}
	return version + " " + GitCommit
}
