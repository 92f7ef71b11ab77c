// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for hioload-tasks.
//
// Provides concurrent-safe state handling primitives including:
//   - Engine settings loaded from YAML with environment overrides
//   - A configuration snapshot published once at engine creation
//   - A metrics registry fed with allocator and pool counters
//   - Debug probe registration and state export
package control
