package main

import "github.com/mailvet/mailvet/cmd/mailvet-cli/commands"

// Version contains the app version, the value is changed during compile time to the appropriate Git tag
var Version = "dev"

func main() {
	commands.SetVersion(Version)
	commands.Execute()
}
