package main

import "github.com/doctools/libdoc/cmd/libdoc/commands"

func main() {
	commands.Execute()
}
