//go:build allocdebug

package arena

// Integrity violations panic in debug builds.
const abortOnIntegrity = true
