//go:build !allocdebug

package arena

const abortOnIntegrity = false
