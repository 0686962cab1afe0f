package main

import "github.com/brogergvhs/bookd/cmd"

func main() {
	cmd.Execute()
}
