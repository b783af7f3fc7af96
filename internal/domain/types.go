package domain

import "time"

// EnvKind classifies how a Python environment was provisioned.
type EnvKind string

const (
	EnvVenv   EnvKind = "venv"
	EnvConda  EnvKind = "conda"
	EnvPoetry EnvKind = "poetry"
	EnvPyenv  EnvKind = "pyenv"
	EnvSystem EnvKind = "system"
)

// FileKind classifies the file handed to detection.
type FileKind string

const (
	FilePython   FileKind = "python"
	FileNotebook FileKind = "notebook"
	FileOther    FileKind = "other"
)

// Environment describes one discovered Python installation.
type Environment struct {
	Name         string  `json:"name"`
	Kind         EnvKind `json:"kind"`
	Root         string  `json:"root"`
	Interpreter  string  `json:"interpreter"`
	Version      string  `json:"version,omitempty"`
	SitePackages string  `json:"site_packages,omitempty"`
	// Active marks the environment currently activated in the calling shell
	// (VIRTUAL_ENV or CONDA_PREFIX).
	Active      bool   `json:"active,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Requirement is one third-party dependency a file or project needs.
//
// Import is the top-level module name as written in Python source ("cv2");
// Distribution is the PyPI project that provides it ("opencv-python").
type Requirement struct {
	Import       string `json:"import,omitempty"`
	Distribution string `json:"distribution"`
	// Source records where the requirement came from: "scan" for imports found
	// in the file, otherwise the manifest file name.
	Source string `json:"source,omitempty"`
}

// PackageStatus is the probe result for one requirement.
type PackageStatus struct {
	Requirement
	Installed bool `json:"installed"`
	// Latest is the newest release on the package index, filled only when
	// index lookups were requested.
	Latest string `json:"latest,omitempty"`
}

// MissingOf filters statuses down to the requirements that are not installed.
func MissingOf(statuses []PackageStatus) []Requirement {
	var missing []Requirement
	for _, st := range statuses {
		if !st.Installed {
			missing = append(missing, st.Requirement)
		}
	}
	return missing
}

// Kernelspec is a parsed Jupyter kernel.json plus its location.
type Kernelspec struct {
	Name          string            `json:"name"`
	Dir           string            `json:"dir"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	Argv          []string          `json:"argv"`
	Env           map[string]string `json:"env,omitempty"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
}

// ConnectionFile mirrors the Jupyter kernel connection file schema.
type ConnectionFile struct {
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	IP              string `json:"ip"`
	Key             string `json:"key"`
	Transport       string `json:"transport"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name,omitempty"`
}

// Report is the outcome of one detection run, consumed either styled by a
// human or as JSON by the editor plugin.
type Report struct {
	File        string       `json:"file"`
	Kind        FileKind     `json:"kind"`
	Environment *Environment `json:"environment,omitempty"`
	Kernel      *Kernelspec  `json:"kernel,omitempty"`
	// JupyterChecked is false when the run skipped the kernel phase entirely
	// (plain scripts with no Jupyter presence).
	JupyterChecked bool            `json:"jupyter_checked"`
	JupyterReady   bool            `json:"jupyter_ready"`
	Packages       []PackageStatus `json:"packages"`
	Missing        []Requirement   `json:"missing,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// RunResult captures one interpreter subprocess run.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// SelftestResult is the outcome of running the detection fixture.
type SelftestResult struct {
	Environment Environment
	Script      string
	RunResult
	// Missing holds distribution names parsed from the interpreter's
	// ModuleNotFoundError diagnostic, in the order they failed.
	Missing []string
	Passed  bool
}

// InstallProgress is emitted once per distribution while installing.
type InstallProgress struct {
	Distribution string
	Index        int
	Total        int
	Done         bool
	Err          error
}

// DetectOptions tune one detection run.
type DetectOptions struct {
	// Env selects an environment by name or interpreter path, overriding the
	// usual precedence.
	Env string
	// Fresh bypasses cached environments and probe results.
	Fresh bool
	// WithLatest also asks the package index for newest released versions.
	WithLatest bool
}
