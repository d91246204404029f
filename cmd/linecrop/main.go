package main

import "github.com/MeKo-Tech/linecrop/cmd/linecrop/cmd"

func main() {
	cmd.Execute()
}
