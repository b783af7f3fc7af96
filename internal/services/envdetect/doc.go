// Package envdetect discovers Python environments (venv, conda, poetry,
// pyenv, system) and selects the right one for a project.
package envdetect
