// Package config loads the calibrate command's configuration.
//
// Sources, later ones winning:
//
//  1. Default() values;
//  2. a YAML file (gopkg.in/yaml.v2);
//  3. environment variables with prefix LVCALIB, e.g.
//     LVCALIB_OPTIMIZER_MAX_ITERATIONS=200 or LVCALIB_LOGGING_LEVEL=debug.
//
// The merged result is checked with go-playground/validator struct tags.
// The calibration section (curves, surfaces, instruments) comes from YAML
// only; Build turns it into a model, instruments, targets and the objects
// to calibrate.
package config
