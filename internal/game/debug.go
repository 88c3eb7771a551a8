package game

// DebugFlags are the key-bindable diagnostic overlays spec.md §6.7
// describes: "path overlay, path-grid overlay, foot-IK enable. These are
// diagnostic flags only, not part of the saved state."
type DebugFlags struct {
	ShowPath     bool
	ShowPathGrid bool
	FootIK       bool
}
