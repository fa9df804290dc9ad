package main

import "github.com/notargets/gotess/cmd"

func main() {
	cmd.Execute()
}
