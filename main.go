package main

import "github.com/skrooge/skrooge/cmd"

func main() {
	cmd.Execute()
}
