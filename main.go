package main

import "planboard.com/planboard/cmd"

func main() {
	cmd.Execute()
}
