package commands

// ResolveVersionInfo exposes the resolution logic to the external test
// package.
var ResolveVersionInfo = resolveVersionInfo
