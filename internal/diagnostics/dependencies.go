package diagnostics

import "os/exec"

var lookPath = exec.LookPath

type BinaryStatus struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

type DependencyReport struct {
	Git                BinaryStatus `json:"git"`
	AllRequiredPresent bool         `json:"all_required_present"`
}

func DetectDependencies() DependencyReport {
	git := detectBinary("git")

	return DependencyReport{
		Git:                git,
		AllRequiredPresent: git.Found,
	}
}

func detectBinary(name string) BinaryStatus {
	path, err := lookPath(name)
	if err != nil {
		return BinaryStatus{Found: false}
	}

	return BinaryStatus{
		Found: true,
		Path:  path,
	}
}
