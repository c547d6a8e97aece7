package main

import "github.com/naka-gawa/contrib-tracker/cmd"

func main() {
	cmd.Execute()
}
