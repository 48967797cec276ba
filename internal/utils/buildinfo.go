package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Version is the cmnorm release, set at link time:
//
//	go build -ldflags "-X github.com/temirov/cmnorm/internal/utils.Version=v1.2.0" ./cmd/cmnorm
var Version string

const (
	unknownVersion = "unknown"
	develVersion   = "(devel)"
	gitExecutable  = "git"
)

var gitDescribeArguments = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion reports the cmnorm version. The link-time Version wins,
// then the module version recorded in the binary, then git describe of the
// checkout containing the working directory.
func GetApplicationVersion() string {
	if linked := strings.TrimSpace(Version); linked != "" {
		return linked
	}
	if buildInfo, available := debug.ReadBuildInfo(); available {
		if moduleVersion := buildInfo.Main.Version; moduleVersion != "" && moduleVersion != develVersion {
			return moduleVersion
		}
	}
	if repositoryRoot, found := FindRepositoryRoot("."); found {
		if described := describeCheckout(repositoryRoot); described != "" {
			return described
		}
	}
	return unknownVersion
}

// FindRepositoryRoot walks up from startDirectory to the first directory
// holding a .git directory.
func FindRepositoryRoot(startDirectory string) (string, bool) {
	currentDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", false
	}
	for {
		fileInformation, statError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if statError == nil && fileInformation.IsDir() {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}

func describeCheckout(repositoryRoot string) string {
	for _, arguments := range gitDescribeArguments {
		// #nosec G204
		command := exec.Command(gitExecutable, arguments...)
		command.Dir = repositoryRoot
		output, commandError := command.Output()
		if commandError == nil {
			if described := strings.TrimSpace(string(output)); described != "" {
				return described
			}
		}
	}
	return ""
}
