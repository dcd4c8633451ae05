// Package config loads retrace settings from a .retrace.cue file.
//
// Configuration is discovered by walking up from the working directory,
// so commands can run from anywhere inside a project. Missing
// configuration is not an error: Default() applies.
package config
