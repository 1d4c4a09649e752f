package main

import "github.com/morler/codeflow/cmd"

func main() {
	cmd.Execute()
}
