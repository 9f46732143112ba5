package main

import "github.com/KaramelBytes/retailpulse-cli/cmd"

func main() {
	cmd.Execute()
}
