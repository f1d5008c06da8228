package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/starmesh-systems/starmesh/pkg/version.Version=v1.0.0 \
//	  -X github.com/starmesh-systems/starmesh/pkg/version.GitCommit=abc1234 \
//	  -X github.com/starmesh-systems/starmesh/pkg/version.BuildDate=2026-01-02"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a one-line human-readable build identifier.
func Info() string {
	return fmt.Sprintf("skyctl %s (%s, built %s)", Version, GitCommit, BuildDate)
}
