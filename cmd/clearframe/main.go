// Command clearframe runs the sunk-cost ticket loop: it reads pending tickets,
// scores each for sunk-cost reasoning, executes a dry-run plan in a sandbox
// workspace and records every run for replay.
package main

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	Execute()
}
