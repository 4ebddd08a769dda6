// Package main implements the entry point for the coban API server, which
// scores kanji and vocabulary mastery and hosts matching games.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
