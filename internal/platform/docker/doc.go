// Package docker provides a client for driving the local container runtime
// through its command-line contract.
//
// The runtime and its compose tool are opaque executable dependencies: this
// package shells out to them rather than speaking their APIs, because that is
// the only interface the provisioner is specified against. The Runner
// abstraction lets tests substitute a scripted fake for the real executables.
package docker
