package domain

import "errors"

// Detection errors
var (
	ErrNotPythonFile = errors.New("not a Python file or notebook")
	ErrNoEnvironment = errors.New("no Python environment found")
	ErrEnvNotFound   = errors.New("requested environment not found")
)

// Interpreter errors
var (
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	ErrProbeFailed         = errors.New("import probe failed")
)

// Jupyter errors
var (
	ErrJupyterNotReady = errors.New("ipykernel is not installed in the environment")
)

// Package and installer errors
var (
	ErrMissingPackages      = errors.New("required packages are missing")
	ErrInstallerNotFound    = errors.New("no usable installer (pip or uv) found")
	ErrInstallDeclined      = errors.New("installation declined")
	ErrIndexDisabled        = errors.New("package index lookups are disabled")
	ErrDistributionNotFound = errors.New("distribution not found on the package index")
)
