package main

import "github.com/viktsys/polycli/cmd"

func main() {
	cmd.Execute()
}
