package common

import "runtime"

// Injected at build time:
//
//	-ldflags "-X github.com/codespace-operator/keycloak-demo/pkg/common.Version=$(git describe --tags)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func GetBuildInfo() map[string]string {
	return map[string]string{
		"version":   Version,
		"gitCommit": GitCommit,
		"buildDate": BuildDate,
		"goVersion": runtime.Version(),
	}
}
