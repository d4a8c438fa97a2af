// Package module discovers identification modules and invokes them.
//
// An identification module is an external program. For one step it is run as
//
//	<command> --no-integration <run_path> <step>
//
// or, for archives of a managed runtime (.jar),
//
//	<java> -jar <archive> --no-integration <run_path> <step>
//
// The module writes every new header as a binary record under
// <run_path>/identified/msgpack and prints the absolute path of each record,
// one per line, on stdout. Stderr is free-form and never parsed.
//
// Failures inside an invocation are soft: a module that cannot be started,
// exits non-zero, times out or prints a path that cannot be read contributes
// fewer (possibly zero) headers for that step, and the caller carries on.
package module
