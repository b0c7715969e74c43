//go:build race

package stress_test

// raceDetectorEnabled reports whether the test binary was built with
// the race detector.
const raceDetectorEnabled = true
