// Command crossroads orchestrates parallel CLI coding agents against a
// product requirements document, one git worktree per task cluster.
package main

func main() {
	Execute()
}
