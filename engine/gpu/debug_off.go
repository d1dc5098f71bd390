//go:build !debug

package gpu

// DebugChecks enables driver error checks after every call and the portable limit ceilings.
const DebugChecks = false
