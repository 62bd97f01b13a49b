package main

import "pointage/cmd"

func main() {
	cmd.Execute()
}
