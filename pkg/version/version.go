package version

// Version is overridden at link time:
//
//	go build -ldflags "-X github.com/c9s/xfactor/pkg/version.Version=v1.2.0" ./cmd/xfactor
var Version = "v0.1.0-dev"

const VersionGitRef = "dev"
