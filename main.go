package main

import "github.com/MalloZup/twopence-nis/cmd"

func main() {
	cmd.Execute()
}
