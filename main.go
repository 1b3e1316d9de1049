// Package main is the entry point for the fantasy CLI, which scores fantasy
// cricket teams against daily MVP point tables and publishes the leaderboard.
package main

import "github.com/pable/go-fantasy-league/cmd"

func main() {
	cmd.Execute()
}
