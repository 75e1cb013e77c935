// Package main is the entry point for the spy report tool.
package main

import "github.com/berkcaputcu/spy/internal/cli"

func main() {
	cli.Execute()
}
